// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package condor configures the gateway for the HTCondor batch system.
//
// # Section
//
//	[Condor]
//	enabled = True
//	condor_location = /opt/condor
//	condor_config = /opt/condor/etc/condor_config
//	job_contact = ce.example.org/jobmanager-condor
//	util_contact = ce.example.org/jobmanager-condor
//	wsgram = False
//
// condor_location defaults to $CONDOR_LOCATION.
// condor_config defaults to $CONDOR_CONFIG, then to etc/condor_config under the location.
package condor

import (
	"path/filepath"

	"github.com/osgconf/osgconf/pkg/modules/jobmanager"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

const configKey = "condor_config"

// Engine describes HTCondor.
var Engine = jobmanager.Engine{
	Name:        "Condor",
	Key:         "condor",
	LocationEnv: []string{"CONDOR_LOCATION"},
	Fields: []osgconf.Field{
		{Key: configKey, Attr: "OSG_CONDOR_CONFIG", Optional: true},
	},
	Resolve: func(m *jobmanager.Module, r osgconf.Resolution) {
		if m.IsSet(configKey) {
			return
		}
		if c := r.Getenv("CONDOR_CONFIG"); c != "" {
			m.SetValue(configKey, c)
		} else if m.IsSet(jobmanager.LocationKey(m.Engine())) {
			m.SetValue(configKey, filepath.Join(m.Location(), "etc", "condor_config"))
		}
	},
	Validate: func(m *jobmanager.Module, v *osgconf.Validation) {
		if c := m.StringValue(configKey); !v.File(c) {
			v.Errorf(configKey, "non-existent file %q", c)
		}
	},
	Args: func(m *jobmanager.Module) []string {
		return []string{"--condor-location", m.Location(), "--condor-config", m.StringValue(configKey)}
	},
}

// New returns a Condor module.
func New() *jobmanager.Module { return jobmanager.New(Engine) }
