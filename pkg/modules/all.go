// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package modules lists the configuration modules of a gateway in registry order.
package modules

import (
	"github.com/osgconf/osgconf/pkg/modules/condor"
	"github.com/osgconf/osgconf/pkg/modules/fuse"
	"github.com/osgconf/osgconf/pkg/modules/hadoop"
	"github.com/osgconf/osgconf/pkg/modules/install"
	"github.com/osgconf/osgconf/pkg/modules/jobmanager"
	"github.com/osgconf/osgconf/pkg/modules/localsettings"
	"github.com/osgconf/osgconf/pkg/modules/lsf"
	"github.com/osgconf/osgconf/pkg/modules/misc"
	"github.com/osgconf/osgconf/pkg/modules/pbs"
	"github.com/osgconf/osgconf/pkg/modules/rsv"
	"github.com/osgconf/osgconf/pkg/modules/sge"
	"github.com/osgconf/osgconf/pkg/modules/squid"
	"github.com/osgconf/osgconf/pkg/modules/xrootd"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

// Options adjust the modules returned by [All].
type Options struct {
	// SudoersFile overrides where job managers write the example sudoers file.
	SudoersFile string
}

// All returns new instances of every module, in the order they are applied.
// Storage comes before the job managers so the gateway sees mounted filesystems.
func All(o Options) []osgconf.Module {
	managers := []*jobmanager.Module{condor.New(), pbs.New(), lsf.New(), sge.New()}
	all := []osgconf.Module{install.New(), misc.New(), hadoop.New(), xrootd.New(), fuse.New()}
	for _, m := range managers {
		m.SudoersFile = o.SudoersFile
		all = append(all, m)
	}
	return append(all, squid.New(), rsv.New(), localsettings.New())
}
