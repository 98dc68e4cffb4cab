// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package pbs configures the gateway for the PBS batch system.
//
// # Section
//
//	[PBS]
//	enabled = True
//	pbs_location = /usr
//	pbs_server = pbs.example.org   # Optional, the local server if unset.
//	job_contact = ce.example.org/jobmanager-pbs
//	util_contact = ce.example.org/jobmanager-pbs
package pbs

import (
	"github.com/osgconf/osgconf/pkg/modules/jobmanager"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

const serverKey = "pbs_server"

var Engine = jobmanager.Engine{
	Name:        "PBS",
	Key:         "pbs",
	LocationEnv: []string{"PBS_LOCATION", "PBS_HOME"},
	Fields: []osgconf.Field{
		{Key: serverKey, Attr: "OSG_PBS_SERVER", Optional: true},
	},
	Validate: func(m *jobmanager.Module, v *osgconf.Validation) {
		if s := m.StringValue(serverKey); m.IsSet(serverKey) && !v.Domain(s, false) {
			v.Errorf(serverKey, "%q is not a valid domain", s)
		}
	},
	Args: func(m *jobmanager.Module) []string {
		args := []string{"--pbs-location", m.Location()}
		if m.IsSet(serverKey) {
			args = append(args, "--pbs-server", m.StringValue(serverKey))
		}
		return args
	},
}

func New() *jobmanager.Module { return jobmanager.New(Engine) }
