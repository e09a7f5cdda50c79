package assets

import (
	"errors"
	"sync"

	"github.com/wolfeidau/bundlecfg/internal/resolver"
)

var (
	// ErrBuildFailed indicates esbuild reported one or more errors
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrNoEntryPoints indicates the resolved configuration has nothing to build
	ErrNoEntryPoints = errors.New("no entry points found")
	// ErrNotBuilt indicates metadata was requested before a successful build
	ErrNotBuilt = errors.New("assets not built yet, call Build() first")
)

// DefaultSassBinary is the Dart Sass executable started for Sass sources.
const DefaultSassBinary = "sass"

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
	CSSBundle  string       `json:"cssBundle"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Pipeline hands a resolved configuration to esbuild and keeps the metadata
// of the last successful build.
type Pipeline struct {
	config     *resolver.Config
	sassBinary string
	metadata   *BuildMetadata
	mu         sync.RWMutex
}

type Option func(*Pipeline)

// WithSassBinary overrides the Dart Sass executable used for Sass sources.
func WithSassBinary(path string) Option {
	return func(p *Pipeline) {
		if path != "" {
			p.sassBinary = path
		}
	}
}

// New creates a new asset pipeline for the given resolved configuration
func New(config *resolver.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:     config,
		sassBinary: DefaultSassBinary,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the resolved configuration the pipeline builds with.
func (p *Pipeline) Config() *resolver.Config {
	return p.config
}
