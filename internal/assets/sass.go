package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/bundlecfg/internal/resolver"
)

// sassCompiler starts the Dart Sass process on first use and shares it for
// every Sass file in the build.
type sassCompiler struct {
	binary string
	minify bool

	once       sync.Once
	transpiler *godartsass.Transpiler
	err        error
}

func (c *sassCompiler) start() (*godartsass.Transpiler, error) {
	c.once.Do(func() {
		log.Debug().Str("binary", c.binary).Msg("Starting Dart Sass")
		c.transpiler, c.err = godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: c.binary,
		})
		if c.err != nil {
			c.err = fmt.Errorf("failed to start dart sass %q: %w", c.binary, c.err)
		}
	})
	return c.transpiler, c.err
}

func (c *sassCompiler) close() {
	if c.transpiler == nil {
		return
	}
	if err := c.transpiler.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to stop Dart Sass")
	}
}

func (c *sassCompiler) compile(path string) (string, error) {
	transpiler, err := c.start()
	if err != nil {
		return "", err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	res, err := transpiler.Execute(godartsass.Args{
		Source:       string(source),
		URL:          "file://" + filepath.ToSlash(path),
		IncludePaths: []string{filepath.Dir(path)},
		SourceSyntax: sassSyntax(path),
		OutputStyle:  cond(c.minify, godartsass.OutputStyleCompressed, godartsass.OutputStyleExpanded),
	})
	if err != nil {
		return "", err
	}

	return res.CSS, nil
}

// sassPlugin compiles Sass sources to CSS before esbuild bundles them. Files
// outside vendor directories are loaded as CSS modules when the rule asks
// for it.
func sassPlugin(rule resolver.Rule, binary string, minify bool) api.Plugin {
	compiler := &sassCompiler{binary: binary, minify: minify}

	return api.Plugin{
		Name: "sass",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: extensionFilter(rule.Extensions)},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					css, err := compiler.compile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					return api.OnLoadResult{
						Contents:   &css,
						ResolveDir: filepath.Dir(args.Path),
						Loader:     sassLoader(rule, args.Path),
					}, nil
				})
			build.OnDispose(compiler.close)
		},
	}
}

func sassSyntax(path string) godartsass.SourceSyntax {
	if strings.EqualFold(filepath.Ext(path), ".sass") {
		return godartsass.SourceSyntaxSASS
	}
	return godartsass.SourceSyntaxSCSS
}

func sassLoader(rule resolver.Rule, path string) api.Loader {
	if rule.Modules && !vendored(path) {
		return api.LoaderLocalCSS
	}
	return api.LoaderCSS
}

// vendored reports whether path lives inside a vendor directory.
func vendored(path string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")
	return slices.ContainsFunc(parts, func(part string) bool {
		return slices.Contains(resolver.VendorDirs, part)
	})
}
