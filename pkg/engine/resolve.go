// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/osgconf/osgconf/pkg/osgconf"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// moduleNode is a graph node for a module, the ID is the registry index.
type moduleNode struct {
	id int64
	m  osgconf.Module
}

func (n moduleNode) ID() int64     { return n.id }
func (n moduleNode) DOTID() string { return n.m.Name() }
func (n moduleNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: fmt.Sprintf("%q", "["+n.m.Core().Section()+"]")}}
}

// dependencies is the needs/provides graph, edges run from provider to resolver.
type dependencies struct {
	*simple.DirectedGraph
	providers map[string]osgconf.Module
}

func newDependencies(modules []osgconf.Module) (*dependencies, error) {
	d := &dependencies{DirectedGraph: simple.NewDirectedGraph(), providers: map[string]osgconf.Module{}}
	nodes := map[osgconf.Module]moduleNode{}
	for i, m := range modules {
		n := moduleNode{id: int64(i), m: m}
		nodes[m] = n
		d.AddNode(n)
		if p, ok := m.(osgconf.Provider); ok {
			for _, key := range p.Provides() {
				if other := d.providers[key]; other != nil {
					return nil, fmt.Errorf("%v provided by both %v and %v", key, other.Name(), m.Name())
				}
				d.providers[key] = m
			}
		}
	}
	for _, m := range modules {
		r, ok := m.(osgconf.Resolver)
		if !ok {
			continue
		}
		for _, key := range r.Needs() {
			p := d.providers[key]
			if p == nil {
				return nil, fmt.Errorf("%v needs %v, no module provides it", m.Name(), key)
			}
			if p != m {
				d.SetEdge(d.NewEdge(nodes[p], nodes[m]))
			}
		}
	}
	return d, nil
}

// order returns modules sorted so that providers come before the modules that need them.
// Independent modules keep registry order.
func (d *dependencies) order() ([]osgconf.Module, error) {
	sorted, err := topo.SortStabilized(d, func(nodes []graph.Node) {
		slices.SortFunc(nodes, func(a, b graph.Node) int { return int(a.ID() - b.ID()) })
	})
	if err != nil {
		return nil, fmt.Errorf("module dependency cycle: %w", err)
	}
	modules := make([]osgconf.Module, len(sorted))
	for i, n := range sorted {
		modules[i] = n.(moduleNode).m
	}
	return modules, nil
}

// DOT renders the dependency graph in GraphViz format.
func (d *dependencies) DOT() ([]byte, error) { return dot.Marshal(d, "modules", "", "  ") }

// resolution is the [osgconf.Resolution] built from provided values after parse.
type resolution struct {
	provided map[string]string
	getenv   func(string) string
}

func newResolution(modules []osgconf.Module, getenv func(string) string) *resolution {
	r := &resolution{provided: map[string]string{}, getenv: getenv}
	for _, m := range modules {
		maps.Copy(r.provided, m.Core().Provided())
	}
	return r
}

func (r *resolution) Lookup(key string) (string, bool) {
	v, ok := r.provided[key]
	return v, ok
}

func (r *resolution) Getenv(key string) string { return r.getenv(key) }
