// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package misc configures host services shared by every gateway: user authorization
// and certificate updates.
//
// # Section
//
//	[Misc Services]
//	enabled = True
//	authorization_method = gridmap   # gridmap, prima or xacml
//	gums_host = gums.example.org     # Required for prima and xacml, default $OSG_GUMS_HOST.
//	use_cert_updater = False
//	glexec_location = /opt/glexec
//
// The authorization method is provided to the job managers, which change the form of
// the sudoers example they write.
package misc

import (
	"context"
	"slices"
	"strings"

	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/osgconf/osgconf/pkg/validate"
)

const (
	methodKey  = "authorization_method"
	gumsKey    = "gums_host"
	updaterKey = "use_cert_updater"
	glexecKey  = "glexec_location"

	// GumsHostEnv overrides a blank gums_host.
	GumsHostEnv = "OSG_GUMS_HOST"

	ProvideAuthorization = "authorization_method"
)

// Methods are the accepted authorization methods.
var Methods = []string{"gridmap", "prima", "xacml"}

var schema = osgconf.Schema{
	{Key: methodKey, Attr: "OSG_AUTHORIZATION_METHOD", Default: "gridmap"},
	{Key: gumsKey, Attr: "OSG_GUMS_HOST", Optional: true},
	{Key: updaterKey, Attr: "OSG_USE_CERT_UPDATER", Kind: osgconf.Bool, Default: false},
	{Key: glexecKey, Attr: "OSG_GLEXEC_LOCATION", Optional: true},
}

type Module struct{ *osgconf.Base }

var (
	// Verify implementing interfaces.
	_ osgconf.Parser    = &Module{}
	_ osgconf.Validator = &Module{}
	_ osgconf.Applier   = &Module{}
	_ osgconf.Provider  = &Module{}
)

func New() *Module {
	return &Module{Base: osgconf.NewBase("misc", []string{"Misc Services"}, schema, osgconf.SeparatelyConfigurable())}
}

func (m *Module) Parse(osgconf.Config) error {
	m.SetValue(methodKey, strings.ToLower(m.StringValue(methodKey)))
	if !m.IsSet(gumsKey) {
		if h := m.Getenv(GumsHostEnv); h != "" {
			m.SetValue(gumsKey, h)
		}
	}
	return nil
}

func (m *Module) method() string { return m.StringValue(methodKey) }

func (m *Module) usesGums() bool { return m.method() == "prima" || m.method() == "xacml" }

func (m *Module) Validate(v *osgconf.Validation) {
	if !slices.Contains(Methods, m.method()) {
		v.Errorf(methodKey, "%q is not one of %v", m.method(), Methods)
	}
	if m.usesGums() {
		if h := m.StringValue(gumsKey); !m.IsSet(gumsKey) {
			v.Errorf(gumsKey, "required when authorization_method is %v", m.method())
		} else if !v.Domain(h, false) {
			v.Errorf(gumsKey, "%q is not a valid domain", h)
		}
	}
	if p := m.StringValue(glexecKey); m.IsSet(glexecKey) && !v.Location(p) {
		v.Errorf(glexecKey, "non-existent location %q", p)
	}
}

func (m *Module) Apply(ctx context.Context, host osgconf.Host, _ osgconf.Attributes) error {
	if m.usesGums() {
		args := []string{"--gums-host", m.StringValue(gumsKey)}
		if m.method() == "xacml" {
			args = append(args, "--xacml")
		}
		if err := m.Configure(ctx, host, "configure_gums_client", args...); err != nil {
			return err
		}
		if err := host.EnableService(ctx, "gums-client-cron"); err != nil {
			return err
		}
		if err := host.DisableService(ctx, "edg-mkgridmap"); err != nil {
			return err
		}
	} else {
		if err := host.EnableService(ctx, "edg-mkgridmap"); err != nil {
			return err
		}
		if err := host.DisableService(ctx, "gums-client-cron"); err != nil {
			return err
		}
	}
	if m.BoolValue(updaterKey) {
		return host.EnableService(ctx, "vdt-update-certs")
	}
	return host.DisableService(ctx, "vdt-update-certs")
}

func (m *Module) Provides() []string { return []string{ProvideAuthorization} }

// Provide publishes the authorization method, defaulting to gridmap.
func (m *Module) Provide(cfg osgconf.Config) map[string]string {
	method, _ := cfg.Option(m.Section(), methodKey)
	method = strings.ToLower(strings.TrimSpace(method))
	if validate.Blank(method) {
		method = "gridmap"
	}
	return map[string]string{ProvideAuthorization: method}
}
