// Package devserver puts an HTTP(S) front in front of esbuild's loopback
// server. esbuild keeps ownership of bundling, watching and the live-reload
// event stream; the front adds what the browser-facing listener needs.
package devserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	httpmiddleware "github.com/wolfeidau/bundlecfg/internal/http"
	"github.com/wolfeidau/bundlecfg/internal/resolver"
)

// EventStreamPath is esbuild's live-reload endpoint. It is never compressed.
const EventStreamPath = "/esbuild"

const shutdownTimeout = 5 * time.Second

// New builds the dev server listening on the configured host and port and
// proxying to upstream.
func New(cfg *resolver.DevServer, upstream *url.URL) (*http.Server, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	srv := configureHTTPServer(addr, Handler(cfg, upstream, log.Logger))

	if cfg.TLS != nil {
		tlsConfig, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = tlsConfig
	}

	return srv, nil
}

// Handler proxies every request to upstream, adding request logging, CORS
// headers and optional compression.
func Handler(cfg *resolver.DevServer, upstream *url.URL, logger zerolog.Logger) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	// flush immediately so the event stream reaches the browser
	proxy.FlushInterval = -1

	var handler http.Handler = proxy
	if cfg.Compress {
		handler = compress(handler)
	}

	handler = cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	}).Handler(handler)

	handler = httpmiddleware.RequestLogger(logger)(handler)
	return httpmiddleware.ClientIPMiddleware()(handler)
}

func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == EventStreamPath {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// TLSConfig builds a server TLS configuration from in-memory material. A CA
// bundle, when present, is appended to the served certificate chain.
func TLSConfig(material *resolver.TLSMaterial) (*tls.Config, error) {
	chain := material.Cert
	if len(material.CA) > 0 {
		chain = append(append(append([]byte{}, material.Cert...), '\n'), material.CA...)
	}

	cert, err := tls.X509KeyPair(chain, material.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", resolver.ErrTLSMaterial, err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		var err error
		if srv.TLSConfig != nil {
			log.Info().Str("addr", srv.Addr).Msg("Dev server listening (https)")
			err = srv.ListenAndServeTLS("", "")
		} else {
			log.Info().Str("addr", srv.Addr).Msg("Dev server listening (http)")
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down dev server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown dev server: %w", err)
	}
	return <-errCh
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// no write timeout, the live-reload event stream stays open
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
