// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package lsf configures the gateway for the LSF batch system.
package lsf

import (
	"path/filepath"

	"github.com/osgconf/osgconf/pkg/modules/jobmanager"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

const profileKey = "lsf_profile"

var Engine = jobmanager.Engine{
	Name:        "LSF",
	Key:         "lsf",
	LocationEnv: []string{"LSF_LOCATION", "LSF_ENVDIR"},
	Fields: []osgconf.Field{
		{Key: profileKey, Attr: "OSG_LSF_PROFILE", Optional: true},
	},
	Resolve: func(m *jobmanager.Module, _ osgconf.Resolution) {
		if !m.IsSet(profileKey) && m.IsSet(jobmanager.LocationKey(m.Engine())) {
			m.SetValue(profileKey, filepath.Join(m.Location(), "conf", "profile.lsf"))
		}
	},
	Validate: func(m *jobmanager.Module, v *osgconf.Validation) {
		if p := m.StringValue(profileKey); m.IsSet(profileKey) && !v.File(p) {
			v.Errorf(profileKey, "non-existent file %q", p)
		}
	},
	Args: func(m *jobmanager.Module) []string {
		return []string{"--lsf-location", m.Location(), "--lsf-profile", m.StringValue(profileKey)}
	},
}

func New() *jobmanager.Module { return jobmanager.New(Engine) }
