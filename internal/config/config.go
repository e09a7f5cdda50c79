// Package config loads the base configuration shared by every mode: where the
// content root and distribution directory live, how the dev server is reached
// and any entry points seeded by hand.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates the base configuration could not be parsed or failed validation
var ErrInvalidConfig = errors.New("invalid base configuration")

// FileNames are the project-local base configuration files, in lookup order.
var FileNames = []string{"bundlecfg.json", "bundlecfg.yaml", "bundlecfg.yml"}

//go:embed default.json
var defaultConfig []byte

type Config struct {
	// Content root served by the dev server, relative to the project root
	ContentBase string `json:"contentBase" yaml:"contentBase" env:"CONTENT_BASE"`
	// Distribution directory below the content root
	DistPath string `json:"distPath" yaml:"distPath" env:"DIST_PATH"`
	// esbuild language target, e.g. es2017
	Target string `json:"target" yaml:"target" env:"TARGET"`

	DevServer DevServer `json:"devServer" yaml:"devServer" envPrefix:"DEVSERVER_"`

	// Entries seeded before discovery runs
	Entries map[string]string `json:"entries" yaml:"entries"`
	// Glob patterns of directories skipped during discovery
	Exclude []string `json:"exclude" yaml:"exclude" env:"EXCLUDE"`

	// path the configuration was read from, empty for the packaged default
	source string
}

type DevServer struct {
	// Public origin browsers use to reach the dev server, without port
	Public string `json:"public" yaml:"public" env:"PUBLIC"`
	Port   int    `json:"port" yaml:"port" env:"PORT"`
	HTTPS  bool   `json:"https" yaml:"https" env:"HTTPS"`

	SSL SSL `json:"ssl" yaml:"ssl" envPrefix:"SSL_"`
}

// SSL names the TLS material files used when HTTPS is enabled.
type SSL struct {
	Cert string `json:"cert" yaml:"cert" env:"CERT"`
	Key  string `json:"key" yaml:"key" env:"KEY"`
	CA   string `json:"ca" yaml:"ca" env:"CA"`
}

// Source returns the file the configuration was loaded from, or an empty
// string when the packaged default was used.
func (c *Config) Source() string {
	return c.source
}

// Default returns the packaged default configuration.
func Default() (*Config, error) {
	return parse(defaultConfig, "default.json")
}

// Find returns the first project-local configuration file present in root.
func Find(root string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// Load reads the base configuration. An explicit path wins, otherwise the
// project-local file in root is used, falling back to the packaged default.
// Environment overrides are applied next, then any field still unset is
// filled from the packaged default.
func Load(root, explicit string) (*Config, error) {
	defaults, err := Default()
	if err != nil {
		return nil, err
	}

	path := explicit
	if path == "" {
		path, _ = Find(root)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read base configuration: %w", err)
		}
		if cfg, err = parse(data, path); err != nil {
			return nil, err
		}
		cfg.source = path
	} else {
		*cfg = *defaults
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "BUNDLECFG_"}); err != nil {
		return nil, fmt.Errorf("%w: environment overrides: %w", ErrInvalidConfig, err)
	}

	if err := mergo.Merge(cfg, defaults); err != nil {
		return nil, fmt.Errorf("error merging default configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().Str("source", cfg.sourceName()).Msg("Loaded base configuration")

	return cfg, nil
}

func parse(data []byte, name string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	return cfg, nil
}

// Validate checks the fields every mode depends on.
func (c *Config) Validate() error {
	var errs []error

	if c.ContentBase == "" {
		errs = append(errs, errors.New("contentBase is required"))
	}
	if filepath.IsAbs(c.DistPath) {
		errs = append(errs, fmt.Errorf("distPath must be relative to contentBase, got %q", c.DistPath))
	}
	if c.DevServer.Port < 1 || c.DevServer.Port > 65535 {
		errs = append(errs, fmt.Errorf("devServer.port must be between 1 and 65535, got %d", c.DevServer.Port))
	}
	if c.DevServer.HTTPS && (c.DevServer.SSL.Cert == "" || c.DevServer.SSL.Key == "") {
		errs = append(errs, errors.New("devServer.ssl.cert and devServer.ssl.key are required when devServer.https is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) sourceName() string {
	if c.source == "" {
		return "packaged default"
	}
	return c.source
}
