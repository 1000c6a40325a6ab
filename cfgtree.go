// Package cfgtree is the top-level entry point: it loads a
// CppConfigFramework-shaped configuration document (including its includes)
// and resolves it into a reference-free node tree.
package cfgtree

import (
	"github.com/signadot/cfgtree/compose"
	"github.com/signadot/cfgtree/ir"
	"github.com/signadot/cfgtree/ndpath"
	"github.com/signadot/cfgtree/resolve"
)

// Config holds Loader-wide settings, mutated by Option functions.
type Config struct {
	MaxCycles int
}

// Option mutates a Config.
type Option func(*Config)

// MaxCycles overrides the resolver's iteration cap (default
// resolve.DefaultMaxCycles).
func MaxCycles(n int) Option {
	return func(c *Config) { c.MaxCycles = n }
}

// Loader loads documents with a fixed set of Options applied to every call.
type Loader struct {
	cfg Config
}

// DefaultLoader returns a Loader configured with the package defaults.
func DefaultLoader(opts ...Option) *Loader {
	cfg := Config{MaxCycles: resolve.DefaultMaxCycles}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{cfg: cfg}
}

// Load reads and resolves the document at filePath (resolved against
// workingDir if relative), returning its root node unchanged (source =
// destination = "/").
func (l *Loader) Load(filePath, workingDir string) (*ir.Node, error) {
	return l.LoadSub(filePath, workingDir, ndpath.Root, ndpath.Root)
}

// LoadSub reads and resolves the document at filePath, then extracts the
// subtree at source and re-homes it under destination.
func (l *Loader) LoadSub(filePath, workingDir, source, destination string) (*ir.Node, error) {
	return compose.Read(filePath, workingDir, source, destination, compose.WithMaxCycles(l.cfg.MaxCycles))
}

// Load is a convenience wrapper around DefaultLoader().Load.
func Load(filePath, workingDir string, opts ...Option) (*ir.Node, error) {
	return DefaultLoader(opts...).Load(filePath, workingDir)
}

// LoadSub is a convenience wrapper around DefaultLoader().LoadSub.
func LoadSub(filePath, workingDir, source, destination string, opts ...Option) (*ir.Node, error) {
	return DefaultLoader(opts...).LoadSub(filePath, workingDir, source, destination)
}
