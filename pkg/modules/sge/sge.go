// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package sge configures the gateway for the Sun Grid Engine batch system.
//
// sge_root defaults to $SGE_ROOT, then to sge_location. The cell directory
// <sge_root>/<sge_cell> must exist.
package sge

import (
	"path/filepath"

	"github.com/osgconf/osgconf/pkg/modules/jobmanager"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

const (
	rootKey = "sge_root"
	cellKey = "sge_cell"
)

var Engine = jobmanager.Engine{
	Name:        "SGE",
	Key:         "sge",
	LocationEnv: []string{"SGE_LOCATION", "SGE_ROOT"},
	Fields: []osgconf.Field{
		{Key: rootKey, Attr: "OSG_SGE_ROOT", Optional: true},
		{Key: cellKey, Attr: "OSG_SGE_CELL", Default: "default"},
	},
	Resolve: func(m *jobmanager.Module, r osgconf.Resolution) {
		if m.IsSet(rootKey) {
			return
		}
		if root := r.Getenv("SGE_ROOT"); root != "" {
			m.SetValue(rootKey, root)
		} else if m.IsSet(jobmanager.LocationKey(m.Engine())) {
			m.SetValue(rootKey, m.Location())
		}
	},
	Validate: func(m *jobmanager.Module, v *osgconf.Validation) {
		root := m.StringValue(rootKey)
		if !v.Directory(root) {
			v.Errorf(rootKey, "non-existent directory %q", root)
			return
		}
		if cell := filepath.Join(root, m.StringValue(cellKey)); !v.Directory(cell) {
			v.Errorf(cellKey, "non-existent cell directory %q", cell)
		}
	},
	Args: func(m *jobmanager.Module) []string {
		return []string{"--sge-root", m.StringValue(rootKey), "--sge-cell", m.StringValue(cellKey)}
	},
}

func New() *jobmanager.Module { return jobmanager.New(Engine) }
