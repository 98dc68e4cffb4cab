// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package install describes where the grid software is installed.
//
// # Section
//
//	[Install Locations]
//	enabled = True
//	osg = /opt/osg               # Default $OSG_LOCATION, then /opt/osg.
//	globus = /opt/osg/globus     # Default <osg>/globus.
//	user_vo_map = /var/lib/osg/user-vo-map
//	gridftp_log = /opt/osg/globus/var/log/gridftp.log
//
// The install root and globus location are provided to other modules whenever the section
// is present, even if it is not enabled.
package install

import (
	"path/filepath"

	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/osgconf/osgconf/pkg/validate"
)

const (
	osgKey    = "osg"
	globusKey = "globus"

	ProvideInstallRoot = "install_root"
	ProvideGlobus      = "globus_location"
)

var schema = osgconf.Schema{
	{Key: osgKey, Attr: "OSG_LOCATION", Optional: true},
	{Key: globusKey, Attr: "GLOBUS_LOCATION", Optional: true},
	{Key: "user_vo_map", Attr: "OSG_USER_VO_MAP", Default: "/var/lib/osg/user-vo-map"},
	{Key: "gridftp_log", Attr: "OSG_GRIDFTP_LOG", Optional: true},
}

type Module struct{ *osgconf.Base }

var (
	// Verify implementing interfaces.
	_ osgconf.Parser    = &Module{}
	_ osgconf.Validator = &Module{}
	_ osgconf.Provider  = &Module{}
)

func New() *Module { return &Module{Base: osgconf.NewBase("install", []string{"Install Locations"}, schema)} }

func (m *Module) Parse(osgconf.Config) error {
	root, globus := m.locations(m.StringValue(osgKey), m.StringValue(globusKey))
	m.SetValue(osgKey, root)
	m.SetValue(globusKey, globus)
	return nil
}

// locations fills in defaults for blank values.
func (m *Module) locations(root, globus string) (string, string) {
	if validate.Blank(root) {
		if root = m.Getenv(osgconf.InstallRootEnv); root == "" {
			root = osgconf.DefaultInstallRoot
		}
	}
	if validate.Blank(globus) {
		globus = filepath.Join(root, "globus")
	}
	return root, globus
}

func (m *Module) Validate(v *osgconf.Validation) {
	for _, key := range []string{osgKey, globusKey} {
		if p := m.StringValue(key); !v.Directory(p) {
			v.Errorf(key, "non-existent directory %q", p)
		}
	}
}

func (m *Module) Provides() []string { return []string{ProvideInstallRoot, ProvideGlobus} }

func (m *Module) Provide(cfg osgconf.Config) map[string]string {
	root, _ := cfg.Option(m.Section(), osgKey)
	globus, _ := cfg.Option(m.Section(), globusKey)
	root, globus = m.locations(root, globus)
	return map[string]string{ProvideInstallRoot: root, ProvideGlobus: globus}
}
