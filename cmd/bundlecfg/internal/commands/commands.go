package commands

import (
	"io"
	"os"

	"github.com/wolfeidau/bundlecfg/internal/mode"
	"github.com/wolfeidau/bundlecfg/internal/resolver"
)

type Globals struct {
	Debug      bool
	Version    string
	Types      []string
	Root       string
	ConfigFile string
	SassBinary string

	// Stdout receives command output, os.Stdout when nil
	Stdout io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Globals) options() resolver.Options {
	return resolver.Options{
		Root:       g.Root,
		ConfigFile: g.ConfigFile,
	}
}

// resolve picks the mode from the --type values and assembles its configuration.
func (g *Globals) resolve() (*resolver.Config, error) {
	m, err := mode.Select(g.Types)
	if err != nil {
		return nil, err
	}
	return resolver.LoadMode(g.options(), m)
}
