// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package fuse configures the FUSE bridge that mounts the distributed filesystem on the gateway.
//
// # Section
//
//	[FUSE]
//	enabled = True
//	mount_point = /mnt/hadoop
//	namenode = namenode.example.org   # Default from [Hadoop].
//	user = root
//	options = allow_other
package fuse

import (
	"context"

	"github.com/osgconf/osgconf/pkg/modules/hadoop"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

const (
	mountKey    = "mount_point"
	namenodeKey = "namenode"
	userKey     = "user"
	optionsKey  = "options"
)

var schema = osgconf.Schema{
	{Key: mountKey, Attr: "OSG_FUSE_MOUNT_POINT"},
	{Key: namenodeKey, Attr: "OSG_FUSE_NAMENODE", Optional: true},
	{Key: userKey, Attr: "OSG_FUSE_USER", Default: "root"},
	{Key: optionsKey, Attr: "OSG_FUSE_OPTIONS", Optional: true},
}

type Module struct{ *osgconf.Base }

var (
	// Verify implementing interfaces.
	_ osgconf.Resolver  = &Module{}
	_ osgconf.Validator = &Module{}
	_ osgconf.Applier   = &Module{}
)

func New() *Module { return &Module{Base: osgconf.NewBase("fuse", []string{"FUSE"}, schema)} }

func (m *Module) Needs() []string { return []string{hadoop.ProvideNamenode} }

func (m *Module) Resolve(r osgconf.Resolution) error {
	if !m.IsSet(namenodeKey) {
		if n, ok := r.Lookup(hadoop.ProvideNamenode); ok {
			m.SetValue(namenodeKey, n)
		}
	}
	return nil
}

func (m *Module) Validate(v *osgconf.Validation) {
	if p := m.StringValue(mountKey); !v.Directory(p) {
		v.Errorf(mountKey, "non-existent directory %q", p)
	}
	if n := m.StringValue(namenodeKey); !m.IsSet(namenodeKey) {
		v.Errorf(namenodeKey, "no namenode set and none provided by [Hadoop]")
	} else if !v.Domain(n, false) {
		v.Errorf(namenodeKey, "%q is not a valid domain", n)
	}
	if u := m.StringValue(userKey); !v.User(u) {
		v.Errorf(userKey, "%q is not a valid user", u)
	}
}

func (m *Module) Apply(ctx context.Context, host osgconf.Host, _ osgconf.Attributes) error {
	args := []string{"--mount-point", m.StringValue(mountKey), "--namenode", m.StringValue(namenodeKey), "--user", m.StringValue(userKey)}
	if m.IsSet(optionsKey) {
		args = append(args, "--options", m.StringValue(optionsKey))
	}
	if err := m.Configure(ctx, host, "configure_fuse", args...); err != nil {
		return err
	}
	return host.EnableService(ctx, "hadoop-fuse")
}
