// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package jobmanager contains the behavior shared by the batch system modules.
//
// Job managers form the exclusive group "jobmanager": at most one may be enabled,
// and they share the contact and gateway attributes. OSG_JOB_MANAGER names the enabled one.
//
// Every job manager section accepts:
//
//	<engine>_location = /path   # Batch system install location, default from the environment.
//	job_contact = host[:port]/jobmanager-<engine>
//	util_contact = host[:port]/jobmanager-<engine>
//	wsgram = False               # Also configure the web-services gateway.
//	accept_limited = False       # Accept limited proxies.
package jobmanager

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/osgconf/osgconf/pkg/osgconf"
)

// Group is the exclusive group of job managers.
const Group = "jobmanager"

// Canonical attributes shared by all job managers.
const (
	AttrJobManager     = "OSG_JOB_MANAGER"
	AttrJobManagerHome = "OSG_JOB_MANAGER_HOME"
	AttrJobContact     = "OSG_JOB_CONTACT"
	AttrUtilContact    = "OSG_UTIL_CONTACT"
	AttrWSGram         = "OSG_WS_GRAM"
	AttrAcceptLimited  = "OSG_ACCEPT_LIMITED"
)

// Keys provided by other modules.
const (
	NeedAuthorization = "authorization_method"
	NeedInstallRoot   = "install_root"
	NeedGlobus        = "globus_location"
)

// Engine describes one batch system.
type Engine struct {
	// Name is the section name and the value of OSG_JOB_MANAGER, e.g. "Condor".
	Name string
	// Key is the lower case engine name used in option names and contacts, e.g. "condor".
	Key string
	// LocationEnv lists environment variables that may hold the install location, in order of preference.
	LocationEnv []string
	// Fields are the engine specific options.
	Fields []osgconf.Field
	// Resolve derives engine specific defaults after the location is known. May be nil.
	Resolve func(m *Module, r osgconf.Resolution)
	// Validate checks engine specific options. May be nil.
	Validate func(m *Module, v *osgconf.Validation)
	// Args returns engine specific arguments for the setup script. May be nil.
	Args func(m *Module) []string
}

// Module is a job manager module. Batch system packages wrap it with an [Engine].
type Module struct {
	*osgconf.Base
	engine Engine
	// SudoersFile is the example sudoers file path, default under the install root.
	SudoersFile string

	authorization  string
	installRoot    string
	globusLocation string
}

var (
	// Verify implementing interfaces.
	_ osgconf.Module    = &Module{}
	_ osgconf.Parser    = &Module{}
	_ osgconf.Resolver  = &Module{}
	_ osgconf.Validator = &Module{}
	_ osgconf.Applier   = &Module{}
)

// New creates a job manager module for engine.
func New(engine Engine) *Module {
	return &Module{
		Base:   osgconf.NewBase(engine.Key, []string{engine.Name}, Schema(engine), osgconf.ExclusiveGroup(Group, AttrJobManager)),
		engine: engine,
	}
}

// Schema returns the common job manager fields followed by the engine fields.
func Schema(e Engine) osgconf.Schema {
	upper := strings.ToUpper(e.Key)
	s := osgconf.Schema{
		{Key: LocationKey(e), Attr: "OSG_" + upper + "_LOCATION", Optional: true},
		{Key: "job_contact", Attr: AttrJobContact},
		{Key: "util_contact", Attr: AttrUtilContact},
		{Key: "wsgram", Attr: AttrWSGram, Kind: osgconf.Bool, Default: false},
		{Key: "accept_limited", Attr: AttrAcceptLimited, Kind: osgconf.Bool, Default: false},
		{Attr: AttrJobManager},
		{Attr: AttrJobManagerHome},
	}
	return append(s, e.Fields...)
}

// LocationKey is the option naming the batch system location.
func LocationKey(e Engine) string { return e.Key + "_location" }

// Engine returns the batch system description.
func (m *Module) Engine() Engine { return m.engine }

// Location is the batch system install location after resolution.
func (m *Module) Location() string { return m.StringValue(LocationKey(m.engine)) }

// InstallRoot is the install root after resolution.
func (m *Module) InstallRoot() string { return m.installRoot }

// Authorization is the authorization method provided by the services module, lower case.
func (m *Module) Authorization() string { return m.authorization }

func (m *Module) Parse(osgconf.Config) error {
	m.SetAttr(AttrJobManager, m.engine.Name)
	return nil
}

func (m *Module) Needs() []string { return []string{NeedAuthorization, NeedInstallRoot, NeedGlobus} }

func (m *Module) Resolve(r osgconf.Resolution) error {
	m.authorization, _ = r.Lookup(NeedAuthorization)
	m.authorization = strings.ToLower(m.authorization)
	m.installRoot = lookup(r, NeedInstallRoot, func() string {
		if root := r.Getenv(osgconf.InstallRootEnv); root != "" {
			return root
		}
		return osgconf.DefaultInstallRoot
	})
	m.globusLocation = lookup(r, NeedGlobus, func() string { return filepath.Join(m.installRoot, "globus") })
	key := LocationKey(m.engine)
	if !m.IsSet(key) {
		for _, env := range m.engine.LocationEnv {
			if loc := r.Getenv(env); loc != "" {
				m.Log().V(1).Info("Location from environment", "option", key, "env", env, "value", loc)
				m.SetValue(key, loc)
				break
			}
		}
	}
	if m.IsSet(key) {
		m.SetAttr(AttrJobManagerHome, m.Location())
	}
	if m.engine.Resolve != nil {
		m.engine.Resolve(m, r)
	}
	return nil
}

func lookup(r osgconf.Resolution, key string, fallback func() string) string {
	if v, ok := r.Lookup(key); ok && v != "" {
		return v
	}
	return fallback()
}

func (m *Module) Validate(v *osgconf.Validation) {
	key := LocationKey(m.engine)
	if loc := m.Location(); !v.Location(loc) {
		v.Errorf(key, "non-existent location %q", loc)
	}
	for _, option := range []string{"job_contact", "util_contact"} {
		if c := m.StringValue(option); !v.Contact(c, m.engine.Key) {
			v.Errorf(option, "%q is not a valid contact, expected host[:port]/jobmanager-%v", c, m.engine.Key)
		}
	}
	if m.engine.Validate != nil {
		m.engine.Validate(m, v)
	}
}

func (m *Module) Apply(ctx context.Context, host osgconf.Host, _ osgconf.Attributes) error {
	args := []string{"--server", "y"}
	if m.BoolValue("accept_limited") {
		args = append(args, "--accept-limited")
	}
	if m.engine.Args != nil {
		args = append(args, m.engine.Args(m)...)
	}
	if err := m.Configure(ctx, host, "configure_"+m.engine.Key, args...); err != nil {
		return err
	}
	if m.BoolValue("wsgram") {
		if err := m.Configure(ctx, host, "configure_globus_ws", "--enable-webservices", "--"+m.engine.Key); err != nil {
			return err
		}
		if err := host.EnableService(ctx, "globus-ws"); err != nil {
			return err
		}
	} else if err := host.DisableService(ctx, "globus-ws"); err != nil {
		return err
	}
	if err := host.EnableService(ctx, "globus-gatekeeper"); err != nil {
		return err
	}
	return m.writeSudoers(host)
}
