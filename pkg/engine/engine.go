// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// package engine runs configuration modules through the phases of a run.
//
// Phases run in strict order: parse, resolve, validate, apply and optionally serialize.
// A setting error during parse is fatal. Validation collects every diagnostic before failing.
// Apply runs modules in registry order and stops at the first configure error,
// the host may then be partially configured.
//
// The engine is single threaded: apply steps change the host and must run in a fixed order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/osgconf/osgconf/internal/pkg/logging"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/osgconf/osgconf/pkg/validate"
)

// Engine runs modules over a configuration. Create with [Build].
//
// Module state lives in the modules, so an engine runs one configuration at a time.
type Engine struct {
	registry  *Registry
	deps      *dependencies
	order     []osgconf.Module // Resolve order.
	log       logr.Logger
	moduleLog *logr.Logger
	checker   *validate.Checker
	host      osgconf.Host
	getenv    func(string) string
	metrics   *Metrics
}

// Registry returns the module registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Metrics returns the metrics of the current run.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// DependencyGraph renders the module needs/provides graph in GraphViz format.
func (e *Engine) DependencyGraph() ([]byte, error) { return e.deps.DOT() }

// Parse runs the parse and resolve phases. Every module is parsed, so modules whose
// section is absent become Disabled.
func (e *Engine) Parse(cfg osgconf.Config) error {
	start := time.Now()
	defer e.metrics.Observe("parse", start)
	e.warnUnowned(cfg)
	e.log.V(1).Info("Active modules", "modules", names(e.registry.For(cfg)))
	for _, m := range e.registry.All() {
		if err := osgconf.Parse(m, cfg); err != nil {
			return err
		}
		e.log.V(2).Info("Parsed", "module", m.Name(), "state", m.State(), "attributes", logging.JSON(m.Attributes()))
	}
	e.metrics.states(e.registry.All())
	e.warnShadowed()
	return e.resolve()
}

func (e *Engine) resolve() error {
	start := time.Now()
	defer e.metrics.Observe("resolve", start)
	r := newResolution(e.registry.All(), e.getenv)
	for _, m := range e.order {
		if err := osgconf.Resolve(m, r); err != nil {
			return fmt.Errorf("resolve %v: %w", m.Name(), err)
		}
	}
	return nil
}

func (e *Engine) warnUnowned(cfg osgconf.Config) {
	s, ok := cfg.(interface{ Sections() []string })
	if !ok {
		return
	}
	for _, name := range s.Sections() {
		if e.registry.Owner(name) == nil {
			logging.Warn(e.log, "unknown section, ignored", "section", name)
		}
	}
}

// warnShadowed warns about free-form options that name an attribute declared by another module.
func (e *Engine) warnShadowed() {
	for _, m := range e.registry.All() {
		if !m.Core().FreeForm() {
			continue
		}
		for _, name := range m.Attributes().Names() {
			if e.registry.Claimed(name) {
				logging.Warn(e.log, "option shadows a module attribute, ignored", "section", m.Core().Section(), "option", name)
			}
		}
	}
}

// Validate runs validation on every module and checks that at most one member of each
// exclusive group is enabled. All problems are returned in a single [osgconf.ValidationError].
func (e *Engine) Validate() error {
	start := time.Now()
	defer e.metrics.Observe("validate", start)
	var diags []osgconf.Diagnostic
	for _, m := range e.registry.All() {
		diags = append(diags, osgconf.Validate(m, e.checker)...)
	}
	diags = append(diags, e.validateGroups()...)
	if len(diags) > 0 {
		return osgconf.ValidationError{Diagnostics: diags}
	}
	return nil
}

func (e *Engine) validateGroups() []osgconf.Diagnostic {
	groups := map[string][]string{}
	var order []string
	for _, m := range e.registry.All() {
		g := m.Core().ExclusiveGroup()
		if g == "" || m.State() != osgconf.Enabled {
			continue
		}
		if groups[g] == nil {
			order = append(order, g)
		}
		groups[g] = append(groups[g], m.Core().Section())
	}
	var diags []osgconf.Diagnostic
	for _, g := range order {
		if sections := groups[g]; len(sections) > 1 {
			diags = append(diags, osgconf.Diagnostic{
				Section: strings.Join(sections, "], ["),
				Message: fmt.Sprintf("only one %v section may be enabled", g),
			})
		}
	}
	return diags
}

// Attributes returns the union of the attributes of enabled modules.
// Free-form modules cannot override attributes declared by other modules.
func (e *Engine) Attributes() osgconf.Attributes {
	attrs := osgconf.Attributes{}
	for _, m := range e.registry.All() {
		e.merge(attrs, m, m.Attributes())
	}
	return attrs
}

func (e *Engine) merge(attrs osgconf.Attributes, m osgconf.Module, from osgconf.Attributes) {
	free := m.Core().FreeForm()
	for k, v := range from {
		if free && e.registry.Claimed(k) {
			continue
		}
		if _, ok := attrs[k]; !ok || !validate.Blank(v) {
			attrs[k] = v
		}
	}
}

// HostAttributes is [Engine.Attributes] plus the placeholder attributes of disabled modules,
// as written to the host attribute file.
func (e *Engine) HostAttributes() osgconf.Attributes {
	attrs := osgconf.Attributes{}
	for _, m := range e.registry.All() {
		e.merge(attrs, m, osgconf.HostAttributes(m))
	}
	return attrs
}

// Apply applies enabled modules in registry order and stops at the first error.
// If only is not empty, only the named modules are applied, and each must be separately configurable.
func (e *Engine) Apply(ctx context.Context, only ...string) (err error) {
	start := time.Now()
	defer e.metrics.Observe("apply", start)
	if e.host == nil {
		return errors.New("no host to apply configuration to")
	}
	for _, name := range only {
		m := e.registry.Module(name)
		switch {
		case m == nil:
			return fmt.Errorf("unknown module: %v", name)
		case !m.SeparatelyConfigurable():
			return fmt.Errorf("module %v cannot be configured on its own", name)
		}
	}
	global := e.Attributes()
	applied := 0
	defer func() { e.metrics.applied.Set(float64(applied)) }()
	for _, m := range e.registry.All() {
		if len(only) > 0 && !slices.Contains(only, m.Name()) {
			continue
		}
		ok, err := osgconf.Apply(ctx, m, e.host, global)
		if err != nil {
			e.log.Error(err, "Configure failed, the host may be partially configured", "module", m.Name())
			return err
		}
		if ok {
			applied++
			e.log.Info("Configured", "module", m.Name())
		} else {
			e.log.V(1).Info("Skipped", "module", m.Name(), "state", m.State())
		}
	}
	return nil
}

// Verify runs parse, resolve and validate.
func (e *Engine) Verify(cfg osgconf.Config) error {
	if err := e.Parse(cfg); err != nil {
		return err
	}
	return e.Validate()
}

// Configure runs every phase up to apply. Apply is not started unless validation succeeds.
func (e *Engine) Configure(ctx context.Context, cfg osgconf.Config, only ...string) (err error) {
	defer func() { e.metrics.Done(err) }()
	if err := e.Verify(cfg); err != nil {
		return err
	}
	return e.Apply(ctx, only...)
}

func names(modules []osgconf.Module) []string {
	n := make([]string, len(modules))
	for i, m := range modules {
		n[i] = m.Name()
	}
	return n
}
