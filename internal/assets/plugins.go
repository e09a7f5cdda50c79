package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/bundlecfg/internal/resolver"
)

// VersionFileContent renders the build-metadata file.
func VersionFileContent(vf resolver.VersionFile) string {
	return fmt.Sprintf("Build: %d\nBuild date: %s", vf.BuildString, vf.BuildDate.UTC().Format(time.RFC1123))
}

// versionFilePlugin writes the build-metadata file once a build finishes
// without errors.
func versionFilePlugin(vf resolver.VersionFile) api.Plugin {
	return api.Plugin{
		Name: "version-file",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}

				if err := os.MkdirAll(filepath.Dir(vf.Path), 0o750); err != nil {
					return api.OnEndResult{}, err
				}
				if err := os.WriteFile(vf.Path, []byte(VersionFileContent(vf)), 0o600); err != nil {
					return api.OnEndResult{}, err
				}

				log.Info().Str("file", vf.Path).Int64("build", vf.BuildString).Msg("Wrote version file")
				return api.OnEndResult{}, nil
			})
		},
	}
}

// unsupportedPlugin fails the build for style languages without a Go compiler.
func unsupportedPlugin(rule resolver.Rule) api.Plugin {
	return api.Plugin{
		Name: "unsupported-" + rule.Name,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: extensionFilter(rule.Extensions)},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return api.OnLoadResult{}, fmt.Errorf("%s sources are not supported (%s), compile them to CSS first",
						rule.Name, strings.Join(rule.Extensions, ", "))
				})
		},
	}
}
