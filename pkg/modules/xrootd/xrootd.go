// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package xrootd configures the XRootD storage export, either as a data server or as the redirector.
//
// # Section
//
//	[XRootD]
//	enabled = True
//	mode = data                       # data or redirector
//	redirector_host = redir.example.org
//	redirector_storage_path = /mnt/hadoop   # Default from [Hadoop].
//	redirector_storage_cache = /var/cache/xrootd
//	user = xrootd
//
// A data server must name a valid redirector host. A redirector must export an existing directory.
package xrootd

import (
	"context"
	"strings"

	"github.com/osgconf/osgconf/pkg/modules/hadoop"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

const (
	modeKey     = "mode"
	hostKey     = "redirector_host"
	storageKey  = "redirector_storage_path"
	cacheKey    = "redirector_storage_cache"
	userKey     = "user"
	locationKey = "xrootd_location"

	ModeData       = "data"
	ModeRedirector = "redirector"
)

var schema = osgconf.Schema{
	{Key: modeKey, Attr: "OSG_XROOTD_MODE"},
	{Key: hostKey, Attr: "OSG_XROOTD_REDIRECTOR"},
	{Key: storageKey, Attr: "OSG_XROOTD_STORAGE_PATH", Optional: true},
	{Key: cacheKey, Attr: "OSG_XROOTD_STORAGE_CACHE", Optional: true},
	{Key: userKey, Attr: "OSG_XROOTD_USER", Default: "xrootd"},
	{Key: locationKey, Attr: "OSG_XROOTD_LOCATION", Optional: true},
}

type Module struct{ *osgconf.Base }

var (
	// Verify implementing interfaces.
	_ osgconf.Parser    = &Module{}
	_ osgconf.Resolver  = &Module{}
	_ osgconf.Validator = &Module{}
	_ osgconf.Applier   = &Module{}
)

func New() *Module {
	return &Module{Base: osgconf.NewBase("xrootd", []string{"XRootD"}, schema,
		osgconf.SeparatelyConfigurable(), osgconf.Placeholders())}
}

func (m *Module) Parse(osgconf.Config) error {
	m.SetValue(modeKey, strings.ToLower(m.StringValue(modeKey)))
	return nil
}

func (m *Module) mode() string { return m.StringValue(modeKey) }

func (m *Module) Needs() []string { return []string{hadoop.ProvideStoragePath} }

// Resolve borrows the storage path from the storage engine if none is set.
func (m *Module) Resolve(r osgconf.Resolution) error {
	if m.IsSet(storageKey) {
		return nil
	}
	if p, ok := r.Lookup(hadoop.ProvideStoragePath); ok {
		m.Log().V(1).Info("Storage path from storage engine", "path", p)
		m.SetValue(storageKey, p)
	}
	return nil
}

func (m *Module) Validate(v *osgconf.Validation) {
	switch m.mode() {
	case ModeData:
		if !v.Domain(m.StringValue(hostKey), false) {
			v.Errorf(hostKey, "redirector_host should point to a valid domain")
		}
	case ModeRedirector:
		if p := m.StringValue(storageKey); !v.Directory(p) {
			v.Errorf(storageKey, "redirector_storage_path should point to an existing directory, got %q", p)
		}
	default:
		v.Errorf(modeKey, "%q is not %v or %v", m.mode(), ModeData, ModeRedirector)
	}
	if u := m.StringValue(userKey); !v.User(u) {
		v.Errorf(userKey, "%q is not a valid user", u)
	}
	if p := m.StringValue(locationKey); m.IsSet(locationKey) && !v.Location(p) {
		v.Errorf(locationKey, "non-existent location %q", p)
	}
}

func (m *Module) Apply(ctx context.Context, host osgconf.Host, _ osgconf.Attributes) error {
	args := []string{"--mode", m.mode(), "--redirector", m.StringValue(hostKey), "--user", m.StringValue(userKey)}
	for _, o := range [][2]string{{storageKey, "--storage-path"}, {cacheKey, "--storage-cache"}} {
		if m.IsSet(o[0]) {
			args = append(args, o[1], m.StringValue(o[0]))
		}
	}
	if err := m.Configure(ctx, host, "configure_xrootd", args...); err != nil {
		return err
	}
	return host.EnableService(ctx, "xrootd")
}
