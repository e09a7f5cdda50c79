package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/bundlecfg/internal/devserver"
)

const loopback = "127.0.0.1"

// Serve watches the sources and serves the bundles with live reload until ctx
// is cancelled. esbuild listens on loopback only; the dev server front adds
// TLS, CORS and compression on the public address.
func (p *Pipeline) Serve(ctx context.Context) error {
	if p.config.DevServer == nil {
		return errors.New("dev server is not configured for this mode")
	}
	if len(p.config.Entries) == 0 {
		return ErrNoEntryPoints
	}

	opts, err := Options(p.config, p.sassBinary)
	if err != nil {
		return err
	}

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		for _, msg := range ctxErr.Errors {
			log.Error().Str("error", formatMessage(msg)).Msg("Build error")
		}
		return ErrBuildFailed
	}
	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}

	result, err := buildCtx.Serve(api.ServeOptions{
		Host:     loopback,
		Servedir: p.config.DevServer.ContentBase,
	})
	if err != nil {
		return fmt.Errorf("failed to start esbuild server: %w", err)
	}

	upstream := &url.URL{Scheme: "http", Host: fmt.Sprintf("%s:%d", loopback, result.Port)}
	log.Debug().Str("upstream", upstream.String()).Msg("esbuild serving")

	srv, err := devserver.New(p.config.DevServer, upstream)
	if err != nil {
		return err
	}

	return devserver.Run(ctx, srv)
}
