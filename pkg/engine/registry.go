// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/osgconf/osgconf/pkg/osgconf"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Registry holds one instance of each module in registry order, which is also the apply order.
type Registry struct {
	modules   []osgconf.Module
	byName    map[string]osgconf.Module
	bySection map[string]osgconf.Module
}

// NewRegistry checks the modules and returns a registry.
//
// It is an error for two modules to share a name, to own the same section, or to
// declare the same canonical attribute unless both belong to the same exclusive group.
func NewRegistry(modules ...osgconf.Module) (*Registry, error) {
	r := &Registry{byName: map[string]osgconf.Module{}, bySection: map[string]osgconf.Module{}}
	var errs []error
	attrOwner := map[string]osgconf.Module{}
	for _, m := range modules {
		if _, dup := r.byName[m.Name()]; dup {
			errs = append(errs, fmt.Errorf("duplicate module name: %v", m.Name()))
			continue
		}
		r.byName[m.Name()] = m
		r.modules = append(r.modules, m)
		for _, s := range m.Sections() {
			key := strings.ToLower(s)
			if owner := r.bySection[key]; owner != nil {
				errs = append(errs, fmt.Errorf("section [%v] owned by both %v and %v", s, owner.Name(), m.Name()))
				continue
			}
			r.bySection[key] = m
		}
		for _, a := range m.Schema().Attrs() {
			owner := attrOwner[a]
			switch {
			case owner == nil:
				attrOwner[a] = m
			case owner.Core().ExclusiveGroup() != "" && owner.Core().ExclusiveGroup() == m.Core().ExclusiveGroup():
				// Members of an exclusive group share attributes, at most one is enabled.
			default:
				errs = append(errs, fmt.Errorf("attribute %v declared by both %v and %v", a, owner.Name(), m.Name()))
			}
		}
	}
	return r, utilerrors.NewAggregate(errs)
}

// All returns every module in registry order.
func (r *Registry) All() []osgconf.Module { return slices.Clone(r.modules) }

// For returns the modules owning a section present in cfg, in registry order.
func (r *Registry) For(cfg osgconf.Config) []osgconf.Module {
	var active []osgconf.Module
	for _, m := range r.modules {
		if slices.ContainsFunc(m.Sections(), cfg.HasSection) {
			active = append(active, m)
		}
	}
	return active
}

// Owner returns the module owning a section, nil if none.
func (r *Registry) Owner(section string) osgconf.Module { return r.bySection[strings.ToLower(section)] }

// Module returns a module by name, nil if none.
func (r *Registry) Module(name string) osgconf.Module { return r.byName[name] }

// Claimed is true if attr is declared by the schema of a module that is not free-form.
func (r *Registry) Claimed(attr string) bool {
	for _, m := range r.modules {
		if m.Core().FreeForm() {
			continue
		}
		if _, ok := m.Schema().Attr(attr); ok {
			return true
		}
	}
	return false
}
