// Package resolver assembles the mode-specific bundler configuration from the
// base configuration and the discovered entry points.
package resolver

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/bundlecfg/internal/config"
	"github.com/wolfeidau/bundlecfg/internal/entries"
	"github.com/wolfeidau/bundlecfg/internal/mode"
)

// ErrTLSMaterial indicates a configured certificate, key or CA file could not be read
var ErrTLSMaterial = errors.New("failed to load TLS material")

const versionFileName = "version.txt"

type Options struct {
	// Project root scanned for marker files; defaults to the working directory
	Root string
	// Explicit base configuration file, skips the project-local lookup
	ConfigFile string
	// Clock used for the build timestamp
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Load resolves the runtime mode from a raw argument list such as os.Args and
// returns the configuration for it. Programs embedding the resolver call
// this; the bundlecfg CLI parses flags itself and calls LoadMode.
func Load(opts Options, args []string) (*Config, error) {
	m, err := mode.FromArgs(args)
	if err != nil {
		return nil, err
	}
	return LoadMode(opts, m)
}

// LoadMode reads the base configuration, discovers entry points below the
// project root and assembles the configuration for m.
func LoadMode(opts Options, m mode.Mode) (*Config, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	opts.Root = root

	base, err := config.Load(root, opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	merged, err := entries.Resolve(root, base.Entries, base.Exclude)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("mode", m.String()).Int("entries", len(merged)).Msg("Resolved entry points")

	return Assemble(base, merged, m, opts)
}

// Assemble selects the template for m and fills in entries, output locations
// and dev server parameters. TLS material is read here, and only in dev
// server mode with HTTPS enabled.
func Assemble(base *config.Config, merged entries.Map, m mode.Mode, opts Options) (*Config, error) {
	switch m {
	case mode.Production:
		return production(base, merged, opts), nil
	case mode.Development:
		return development(base, merged, opts), nil
	case mode.DevServer:
		return devServer(base, merged, opts)
	default:
		return nil, fmt.Errorf("unhandled mode %s: %w", m, mode.ErrModeRequired)
	}
}

func common(base *config.Config, merged entries.Map, m mode.Mode, opts Options) *Config {
	return &Config{
		Mode:    m,
		Root:    opts.Root,
		Entries: maps.Clone(merged),
		Output: Output{
			Path:       outputPath(opts.Root, base),
			Filename:   "[name]",
			AssetNames: "assets/[name]",
		},
		Styles:     StylesExtract,
		SourceMap:  SourceMapNone,
		Target:     base.Target,
		Extensions: []string{".js", ".jsx", ".ts", ".tsx"},
		Rules:      DefaultRules(),
	}
}

func production(base *config.Config, merged entries.Map, opts Options) *Config {
	cfg := common(base, merged, mode.Production, opts)
	cfg.Optimization = Optimization{Minify: true, NodeEnv: "production"}

	now := opts.now()
	cfg.VersionFile = &VersionFile{
		Path:        filepath.Join(cfg.Output.Path, versionFileName),
		BuildString: now.Unix(),
		BuildDate:   now,
	}

	return cfg
}

func development(base *config.Config, merged entries.Map, opts Options) *Config {
	cfg := common(base, merged, mode.Development, opts)
	cfg.Optimization = Optimization{NodeEnv: "development"}
	cfg.SourceMap = SourceMapInline
	return cfg
}

func devServer(base *config.Config, merged entries.Map, opts Options) (*Config, error) {
	cfg := common(base, merged, mode.DevServer, opts)
	cfg.Optimization = Optimization{NodeEnv: "development"}
	cfg.SourceMap = SourceMapInline
	cfg.Styles = StylesInject
	cfg.LiveReload = true
	cfg.Output.PublicPath = fmt.Sprintf("%s:%d%s", base.DevServer.Public, base.DevServer.Port, publicPath(base.DistPath))

	cfg.DevServer = &DevServer{
		Host:        "0.0.0.0",
		Port:        base.DevServer.Port,
		Public:      base.DevServer.Public,
		ContentBase: filepath.Join(opts.Root, base.ContentBase),
		PublicPath:  publicPath(base.DistPath),
		Compress:    true,
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"X-Requested-With", "content-type", "Authorization"},
		},
	}

	if base.DevServer.HTTPS {
		material, err := loadTLS(opts.Root, base.DevServer.SSL)
		if err != nil {
			return nil, err
		}
		cfg.DevServer.TLS = material
	}

	return cfg, nil
}

func loadTLS(root string, ssl config.SSL) (*TLSMaterial, error) {
	material := &TLSMaterial{
		CertFile: resolvePath(root, ssl.Cert),
		KeyFile:  resolvePath(root, ssl.Key),
	}

	var err error
	if material.Cert, err = os.ReadFile(material.CertFile); err != nil {
		return nil, fmt.Errorf("%w: certificate: %w", ErrTLSMaterial, err)
	}
	if material.Key, err = os.ReadFile(material.KeyFile); err != nil {
		return nil, fmt.Errorf("%w: key: %w", ErrTLSMaterial, err)
	}

	if ssl.CA != "" {
		material.CAFile = resolvePath(root, ssl.CA)
		if material.CA, err = os.ReadFile(material.CAFile); err != nil {
			return nil, fmt.Errorf("%w: ca: %w", ErrTLSMaterial, err)
		}
	}

	return material, nil
}

func outputPath(root string, base *config.Config) string {
	return filepath.Join(root, base.ContentBase, base.DistPath)
}

func publicPath(distPath string) string {
	if distPath == "" {
		return "/"
	}
	return "/" + filepath.ToSlash(distPath) + "/"
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
