package assets

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

const metafileName = "meta.json"

// Build runs esbuild once with the resolved settings and loads metadata
func (p *Pipeline) Build() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.config.Entries) == 0 {
		return ErrNoEntryPoints
	}

	opts, err := Options(p.config, p.sassBinary)
	if err != nil {
		return err
	}

	log.Info().
		Str("mode", p.config.Mode.String()).
		Strs("entrypoints", slices.Sorted(maps.Keys(p.config.Entries))).
		Msg("Building assets")

	result := api.Build(opts)

	for _, msg := range result.Warnings {
		log.Warn().Str("warning", formatMessage(msg)).Msg("Build warning")
	}

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Error().Str("error", formatMessage(msg)).Msg("Build error")
		}
		return ErrBuildFailed
	}

	for _, file := range result.OutputFiles {
		log.Info().Str("file", file.Path).Msg("Built file")
	}

	// Write metafile
	if err := os.MkdirAll(p.config.Output.Path, 0o750); err != nil {
		return err
	}
	if err := os.WriteFile(p.MetafilePath(), []byte(result.Metafile), 0o600); err != nil {
		return err
	}

	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return err
	}

	p.metadata = &metadata
	return nil
}

// MetafilePath is where Build writes the esbuild metafile.
func (p *Pipeline) MetafilePath() string {
	return filepath.Join(p.config.Output.Path, metafileName)
}

// Scripts returns the ordered list of script paths needed for the named entry
// point, starting with the entry's own output file. Paths are relative to the
// project root.
func (p *Pipeline) Scripts(name string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, ErrNotBuilt
	}

	src, ok := p.config.Entries[name]
	if !ok {
		return nil, fmt.Errorf("unknown entrypoint %q", name)
	}

	if !filepath.IsAbs(src) {
		src = filepath.Join(p.config.Root, src)
	}

	entryPointPath, err := filepath.Rel(p.config.Root, src)
	if err != nil {
		return nil, err
	}
	entryPointPath = filepath.ToSlash(entryPointPath)

	scripts := []string{}
	visited := make(map[string]bool)

	// Find the output file for this entrypoint, skipping the CSS sibling
	for _, outputPath := range slices.Sorted(maps.Keys(p.metadata.Outputs)) {
		info := p.metadata.Outputs[outputPath]
		if info.EntryPoint != entryPointPath || filepath.Ext(outputPath) != ".js" {
			continue
		}

		scripts = append(scripts, outputPath)
		visited[outputPath] = true
		p.addDependencies(info, &scripts, visited)
		return scripts, nil
	}

	return nil, fmt.Errorf("entrypoint %q not found in metadata", name)
}

func (p *Pipeline) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*scripts = append(*scripts, imp.Path)

			if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
				p.addDependencies(chunkInfo, scripts, visited)
			}
		}
	}
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}
