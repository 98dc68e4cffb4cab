// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package engine

import (
	"errors"
	"os"

	"github.com/go-logr/logr"
	"github.com/osgconf/osgconf/internal/pkg/logging"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/osgconf/osgconf/pkg/validate"
)

// Builder initializes the state of an engine.
// Engine() returns the engine instance.
type Builder struct {
	e       *Engine
	modules []osgconf.Module
	err     error
}

func Build() *Builder {
	return &Builder{e: &Engine{
		log:     logging.Log().WithName("engine"),
		checker: validate.Host(),
		getenv:  os.Getenv,
		metrics: newMetrics(),
	}}
}

// Err returns a non-nil error if anything goes wrong during building.
func (b *Builder) Err() error { return b.err }

func (b *Builder) error(err error) bool {
	b.err = errors.Join(b.err, err)
	return b.err != nil
}

// Modules adds modules in registry order.
func (b *Builder) Modules(modules ...osgconf.Module) *Builder {
	b.modules = append(b.modules, modules...)
	return b
}

// Logger sets the logger for the engine and its modules.
func (b *Builder) Logger(l logr.Logger) *Builder {
	b.e.log = l.WithName("engine")
	b.e.moduleLog = &l
	return b
}

// Checker sets the host checker used by validation.
func (b *Builder) Checker(c *validate.Checker) *Builder { b.e.checker = c; return b }

// Host sets the host used by apply. Apply fails if no host is set.
func (b *Builder) Host(h osgconf.Host) *Builder { b.e.host = h; return b }

// Getenv sets the environment lookup, default [os.Getenv].
func (b *Builder) Getenv(f func(string) string) *Builder { b.e.getenv = f; return b }

// Engine returns the final engine.
// The Builder must not be used after calling Engine()
func (b *Builder) Engine() (*Engine, error) {
	e := b.e
	b.e = nil
	r, err := NewRegistry(b.modules...)
	if b.error(err) {
		return nil, b.err
	}
	e.registry = r
	deps, err := newDependencies(r.All())
	if b.error(err) {
		return nil, b.err
	}
	e.deps = deps
	if e.order, err = deps.order(); b.error(err) {
		return nil, b.err
	}
	for _, m := range r.All() {
		if e.moduleLog != nil {
			m.Core().SetLog(*e.moduleLog)
		}
		m.Core().SetGetenv(e.getenv)
	}
	return e, b.Err()
}
