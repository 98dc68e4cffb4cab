// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package hadoop configures a Hadoop distributed filesystem node as the storage engine.
//
// # Section
//
//	[Hadoop]
//	enabled = True
//	namenode = namenode.example.org
//	namenode_port = 9000
//	replication = 2
//	data_dirs = /data1,/data2
//	hadoop_location = /usr/lib/hadoop
//	redirector_storage_path = /mnt/hadoop
//
// When disabled, every attribute is published as UNAVAILABLE in the host attribute file.
// The namenode and storage path are provided to the storage export and filesystem bridge modules.
package hadoop

import (
	"context"
	"strconv"
	"strings"

	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/osgconf/osgconf/pkg/validate"
)

const (
	namenodeKey    = "namenode"
	portKey        = "namenode_port"
	replicationKey = "replication"
	dataDirsKey    = "data_dirs"
	locationKey    = "hadoop_location"
	storageKey     = "redirector_storage_path"

	ProvideNamenode    = "namenode"
	ProvideStoragePath = "redirector_storage_path"
)

var schema = osgconf.Schema{
	{Key: namenodeKey, Attr: "OSG_HADOOP_NAMENODE"},
	{Key: portKey, Attr: "OSG_HADOOP_NAMENODE_PORT", Kind: osgconf.Int, Default: 9000},
	{Key: replicationKey, Attr: "OSG_HADOOP_REPLICATION", Kind: osgconf.Int, Default: 2},
	{Key: dataDirsKey, Attr: "OSG_HADOOP_DATA_DIRS"},
	{Key: locationKey, Attr: "OSG_HADOOP_LOCATION", Optional: true},
	{Key: storageKey, Attr: "OSG_HADOOP_STORAGE_PATH", Optional: true},
}

type Module struct{ *osgconf.Base }

var (
	// Verify implementing interfaces.
	_ osgconf.Validator = &Module{}
	_ osgconf.Applier   = &Module{}
	_ osgconf.Provider  = &Module{}
)

func New() *Module {
	return &Module{Base: osgconf.NewBase("hadoop", []string{"Hadoop"}, schema,
		osgconf.SeparatelyConfigurable(), osgconf.Placeholders())}
}

// DataDirs splits the data_dirs list.
func (m *Module) DataDirs() []string { return splitList(m.StringValue(dataDirsKey)) }

func splitList(s string) []string {
	var list []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			list = append(list, f)
		}
	}
	return list
}

func (m *Module) Validate(v *osgconf.Validation) {
	if n := m.StringValue(namenodeKey); m.IsSet(namenodeKey) && !v.Domain(n, false) {
		v.Errorf(namenodeKey, "%q is not a valid domain", n)
	}
	if p := m.IntValue(portKey); p < 1 || p > 65535 {
		v.Errorf(portKey, "%v is not a valid port", p)
	}
	if r := m.IntValue(replicationKey); r < 1 {
		v.Errorf(replicationKey, "must be at least 1, got %v", r)
	}
	if m.IsSet(dataDirsKey) && len(m.DataDirs()) == 0 {
		v.Errorf(dataDirsKey, "no directories listed")
	}
	if p := m.StringValue(locationKey); m.IsSet(locationKey) && !v.Location(p) {
		v.Errorf(locationKey, "non-existent location %q", p)
	}
}

func (m *Module) Apply(ctx context.Context, host osgconf.Host, _ osgconf.Attributes) error {
	args := []string{
		"--namenode", m.StringValue(namenodeKey),
		"--port", strconv.Itoa(m.IntValue(portKey)),
		"--replication", strconv.Itoa(m.IntValue(replicationKey)),
		"--data-dirs", strings.Join(m.DataDirs(), ","),
	}
	if m.IsSet(locationKey) {
		args = append(args, "--hadoop-location", m.StringValue(locationKey))
	}
	if err := m.Configure(ctx, host, "configure_hadoop", args...); err != nil {
		return err
	}
	return host.EnableService(ctx, "hadoop")
}

func (m *Module) Provides() []string { return []string{ProvideNamenode, ProvideStoragePath} }

func (m *Module) Provide(cfg osgconf.Config) map[string]string {
	p := map[string]string{}
	for key, option := range map[string]string{ProvideNamenode: namenodeKey, ProvideStoragePath: storageKey} {
		if v, ok := cfg.Option(m.Section(), option); ok && !validate.Blank(strings.TrimSpace(v)) {
			p[key] = strings.TrimSpace(v)
		}
	}
	return p
}
