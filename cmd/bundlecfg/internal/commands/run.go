package commands

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/bundlecfg/internal/assets"
	"github.com/wolfeidau/bundlecfg/internal/mode"
)

type RunCmd struct{}

func (c *RunCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := globals.resolve()
	if err != nil {
		return err
	}

	log.Info().
		Str("version", globals.Version).
		Str("mode", cfg.Mode.String()).
		Str("output", cfg.Output.Path).
		Msg("Starting bundler")

	pipeline := assets.New(cfg, assets.WithSassBinary(globals.SassBinary))

	switch cfg.Mode {
	case mode.Development, mode.Production:
		if err := pipeline.Build(); err != nil {
			return fmt.Errorf("failed to build js assets: %w", err)
		}

		for _, name := range slices.Sorted(maps.Keys(cfg.Entries)) {
			scripts, err := pipeline.Scripts(name)
			if err != nil {
				return err
			}
			log.Info().Str("entry", name).Strs("scripts", scripts).Msg("Entry bundled")
		}
		return nil

	case mode.DevServer:
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return pipeline.Serve(ctx)
	}

	return fmt.Errorf("unhandled mode %s", cfg.Mode)
}
