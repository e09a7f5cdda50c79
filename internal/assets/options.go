package assets

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/bundlecfg/internal/resolver"
)

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var loaders = map[resolver.Loader]api.Loader{
	resolver.LoaderFile:     api.LoaderFile,
	resolver.LoaderCSS:      api.LoaderCSS,
	resolver.LoaderLocalCSS: api.LoaderLocalCSS,
	resolver.LoaderJSX:      api.LoaderJSX,
	resolver.LoaderTS:       api.LoaderTS,
	resolver.LoaderTSX:      api.LoaderTSX,
}

// Options translates a resolved configuration into esbuild build options.
// Entry points are ordered by output name so repeated runs are identical.
func Options(cfg *resolver.Config, sassBinary string) (api.BuildOptions, error) {
	target, ok := targets[strings.ToLower(cfg.Target)]
	if !ok {
		return api.BuildOptions{}, fmt.Errorf("unsupported target %q", cfg.Target)
	}

	entryPoints := make([]api.EntryPoint, 0, len(cfg.Entries))
	for _, name := range slices.Sorted(maps.Keys(cfg.Entries)) {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  cfg.Entries[name],
			OutputPath: name,
		})
	}

	opts := api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		AbsWorkingDir:       cfg.Root,
		Outdir:              cfg.Output.Path,
		EntryNames:          cfg.Output.Filename,
		AssetNames:          cfg.Output.AssetNames,
		PublicPath:          cfg.Output.PublicPath,
		Bundle:              true,
		Write:               cfg.Styles == resolver.StylesExtract,
		Metafile:            true,
		Format:              api.FormatIIFE,
		Platform:            api.PlatformBrowser,
		Target:              target,
		JSX:                 api.JSXTransform,
		ResolveExtensions:   cfg.Extensions,
		MinifyWhitespace:    cfg.Optimization.Minify,
		MinifyIdentifiers:   cfg.Optimization.Minify,
		MinifySyntax:        cfg.Optimization.Minify,
		TreeShaking:         cond(cfg.Optimization.Minify, api.TreeShakingTrue, api.TreeShakingDefault),
		Sourcemap:           cond(cfg.SourceMap == resolver.SourceMapInline, api.SourceMapInline, api.SourceMapNone),
		Define: map[string]string{
			"process.env.NODE_ENV": strconv.Quote(cfg.Optimization.NodeEnv),
		},
		Loader:   map[string]api.Loader{},
		LogLevel: api.LogLevelSilent,
	}

	for _, rule := range cfg.Rules {
		switch rule.Loader {
		case resolver.LoaderSass:
			opts.Plugins = append(opts.Plugins, sassPlugin(rule, sassBinary, cfg.Optimization.Minify))
		case resolver.LoaderUnsupported:
			opts.Plugins = append(opts.Plugins, unsupportedPlugin(rule))
		default:
			loader, ok := loaders[rule.Loader]
			if !ok {
				return api.BuildOptions{}, fmt.Errorf("rule %s: unknown loader %q", rule.Name, rule.Loader)
			}
			for _, ext := range rule.Extensions {
				opts.Loader[ext] = loader
			}
		}
	}

	if cfg.LiveReload && cfg.DevServer != nil {
		opts.Banner = map[string]string{"js": liveReloadSnippet(cfg.DevServer)}
	}

	if cfg.VersionFile != nil {
		opts.Plugins = append(opts.Plugins, versionFilePlugin(*cfg.VersionFile))
	}

	return opts, nil
}

// liveReloadSnippet subscribes the page to esbuild's change events through the
// dev server's public origin.
func liveReloadSnippet(ds *resolver.DevServer) string {
	origin := fmt.Sprintf("%s:%d", ds.Public, ds.Port)
	return fmt.Sprintf(`(() => { new EventSource(%q).addEventListener("change", () => location.reload()); })();`, origin+"/esbuild")
}

// extensionFilter builds an esbuild plugin filter matching any of exts.
func extensionFilter(exts []string) string {
	quoted := make([]string, 0, len(exts))
	for _, ext := range exts {
		quoted = append(quoted, regexp.QuoteMeta(strings.TrimPrefix(ext, ".")))
	}
	return `\.(` + strings.Join(quoted, "|") + `)$`
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
