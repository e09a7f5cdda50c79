package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/bundlecfg/cmd/bundlecfg/internal/commands"
	"github.com/wolfeidau/bundlecfg/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Debug      bool     `help:"Enable debug mode."`
		Type       []string `help:"Runtime mode: development, production or devserver. The last valid value wins." sep:"none" placeholder:"MODE"`
		Root       string   `help:"Project root scanned for entry declarations." default:"." type:"path" env:"BUNDLECFG_ROOT"`
		Config     string   `help:"Base configuration file, overrides the project-local lookup." type:"path" env:"BUNDLECFG_CONFIG"`
		SassBinary string   `help:"Dart Sass executable used for .scss and .sass sources." default:"sass" env:"BUNDLECFG_SASS_BINARY"`
		Version    kong.VersionFlag

		Run     commands.RunCmd     `cmd:"" default:"withargs" help:"Build (development, production) or serve (devserver) the project"`
		Resolve commands.ResolveCmd `cmd:"" help:"Print the resolved configuration"`
		Entries commands.EntriesCmd `cmd:"" help:"List discovered entry points"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Description("Discover entry points and bundle them with esbuild."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{
		Debug:      cli.Debug,
		Version:    version,
		Types:      cli.Type,
		Root:       cli.Root,
		ConfigFile: cli.Config,
		SassBinary: cli.SassBinary,
	})
	cmd.FatalIfErrorf(err)
}
