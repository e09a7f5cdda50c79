// Package entries discovers entry point declarations scattered across a
// project tree and merges them into a single map of output name to source
// file.
package entries

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	// MarkerName is the reserved file name that declares entry points for its directory.
	MarkerName = "bundle.entry.json"
	// Placeholder is the entry key used by scaffolding projects with no real entries yet.
	Placeholder = "_bundle-entries-example"
)

// Map maps an output bundle name to the source file it is built from.
type Map map[string]string

// Declaration is the content of one marker file.
type Declaration struct {
	// Path of the marker file itself
	Path string
	// Entries as written in the file, paths relative to the marker's directory
	Entries map[string]string
}

// Dir returns the directory the declaration's relative paths are resolved against.
func (d Declaration) Dir() string {
	return filepath.Dir(d.Path)
}

// Names returns the declared output names in sorted order.
func (d Declaration) Names() []string {
	return slices.Sorted(maps.Keys(d.Entries))
}

// Discover walks the tree below root and returns the path of every marker
// file, sorted lexicographically. A symlinked root is walked through its
// target but paths are reported below root. Symlinked directories inside the
// tree are not followed, while a symlinked marker pointing at a regular file
// counts. Directories whose root-relative slash path matches one of the
// exclude patterns are skipped.
func Discover(root string, exclude []string) ([]string, error) {
	for _, pat := range exclude {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pat)
		}
	}

	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for entry declarations: %w", root, err)
	}

	var markers []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != walkRoot && excluded(walkRoot, path, exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() != MarkerName || !isFile(path, d) {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return err
		}
		markers = append(markers, filepath.Join(root, rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for entry declarations: %w", root, err)
	}

	slices.Sort(markers)
	return markers, nil
}

// isFile reports whether d is a regular file or a symlink to one.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func excluded(root, path string, patterns []string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pat := range patterns {
		if matched, matchErr := doublestar.Match(pat, rel); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// ReadDeclaration parses a marker file. Both JSON and YAML content is accepted.
func ReadDeclaration(path string) (Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Declaration{}, fmt.Errorf("%w: %w", ErrInvalidDeclaration, err)
	}

	var declared map[string]string
	if err := yaml.Unmarshal(data, &declared); err != nil {
		return Declaration{}, fmt.Errorf("%w: %s: %w", ErrInvalidDeclaration, path, err)
	}

	for name, src := range declared {
		if name == "" {
			return Declaration{}, fmt.Errorf("%w: %s: empty output name", ErrInvalidDeclaration, path)
		}
		if src == "" {
			return Declaration{}, fmt.Errorf("%w: %s: empty source path for %q", ErrInvalidDeclaration, path, name)
		}
	}

	return Declaration{Path: path, Entries: declared}, nil
}

// Merge overlays the declarations onto a copy of base. Relative source paths
// are resolved against the declaring marker's directory. Declarations may
// replace pre-seeded base entries, but two declarations naming the same
// output is an error.
func Merge(base Map, decls []Declaration) (Map, error) {
	merged := make(Map, len(base))
	maps.Copy(merged, base)

	owners := make(map[string]string)
	for _, decl := range decls {
		for _, name := range decl.Names() {
			if owner, ok := owners[name]; ok {
				return nil, fmt.Errorf("%w: %q declared in both %s and %s", ErrDuplicateEntry, name, owner, decl.Path)
			}
			owners[name] = decl.Path

			src := decl.Entries[name]
			if !filepath.IsAbs(src) {
				src = filepath.Join(decl.Dir(), src)
			}
			merged[name] = src
		}
	}

	return merged, nil
}

// Prune drops the scaffolding placeholder once a real entry exists next to it.
// A map holding only the placeholder is returned unchanged.
func Prune(m Map) Map {
	out := make(Map, len(m))
	maps.Copy(out, m)

	if len(out) > 1 {
		delete(out, Placeholder)
	}
	return out
}

// Resolve discovers every marker below root, merges their declarations onto
// base and prunes the placeholder. Relative base entries are resolved against
// root, so every path in the result is absolute. Any unreadable or malformed
// marker aborts the whole resolution.
func Resolve(root string, base Map, exclude []string) (Map, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	markers, err := Discover(abs, exclude)
	if err != nil {
		return nil, err
	}

	decls := make([]Declaration, 0, len(markers))
	for _, marker := range markers {
		decl, err := ReadDeclaration(marker)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("marker", marker).Strs("entries", decl.Names()).Msg("Found entry declaration")
		decls = append(decls, decl)
	}

	seeded := make(Map, len(base))
	for name, src := range base {
		if !filepath.IsAbs(src) {
			src = filepath.Join(abs, src)
		}
		seeded[name] = src
	}

	merged, err := Merge(seeded, decls)
	if err != nil {
		return nil, err
	}

	return Prune(merged), nil
}
