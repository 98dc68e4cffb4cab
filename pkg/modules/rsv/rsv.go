// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package rsv configures the site availability monitoring probes.
//
// # Section
//
//	[RSV]
//	enabled = True
//	rsv_user = rsvuser
//	enable_ce_probes = True
//	ce_hosts = ce1.example.org, ce2.example.org
//	enable_gridftp_probes = False
//	gridftp_hosts = gridftp.example.org
//	gratia_probes = metric, condor
//	use_service_cert = False
//	rsv_cert_file = /etc/grid-security/rsvcert.pem
//	rsv_key_file = /etc/grid-security/rsvkey.pem
//	setup_for_apache = False
package rsv

import (
	"context"
	"fmt"
	"strings"

	"github.com/osgconf/osgconf/pkg/osgconf"
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	userKey          = "rsv_user"
	ceProbesKey      = "enable_ce_probes"
	ceHostsKey       = "ce_hosts"
	gridftpProbesKey = "enable_gridftp_probes"
	gridftpHostsKey  = "gridftp_hosts"
	gratiaProbesKey  = "gratia_probes"
	serviceCertKey   = "use_service_cert"
	certFileKey      = "rsv_cert_file"
	keyFileKey       = "rsv_key_file"
	apacheKey        = "setup_for_apache"
)

// GratiaProbes are the accounting probe names accepted in gratia_probes.
var GratiaProbes = sets.New("metric", "condor", "pbs", "lsf", "sge", "gridftp-transfer")

var schema = osgconf.Schema{
	{Key: userKey, Attr: "OSG_RSV_USER"},
	{Key: ceProbesKey, Attr: "OSG_RSV_CE_PROBES", Kind: osgconf.Bool, Default: false},
	{Key: ceHostsKey, Attr: "OSG_RSV_CE_HOSTS", Optional: true},
	{Key: gridftpProbesKey, Attr: "OSG_RSV_GRIDFTP_PROBES", Kind: osgconf.Bool, Default: false},
	{Key: gridftpHostsKey, Attr: "OSG_RSV_GRIDFTP_HOSTS", Optional: true},
	{Key: gratiaProbesKey, Attr: "OSG_RSV_GRATIA_PROBES", Optional: true},
	{Key: serviceCertKey, Attr: "OSG_RSV_USE_SERVICE_CERT", Kind: osgconf.Bool, Default: false},
	{Key: certFileKey, Attr: "OSG_RSV_CERT_FILE", Optional: true},
	{Key: keyFileKey, Attr: "OSG_RSV_KEY_FILE", Optional: true},
	{Key: apacheKey, Attr: "OSG_RSV_APACHE", Kind: osgconf.Bool, Default: false},
}

type Module struct{ *osgconf.Base }

var (
	// Verify implementing interfaces.
	_ osgconf.Validator = &Module{}
	_ osgconf.Applier   = &Module{}
)

func New() *Module {
	return &Module{Base: osgconf.NewBase("rsv", []string{"RSV"}, schema, osgconf.SeparatelyConfigurable())}
}

// Tokens splits a comma separated list, dropping blank entries.
func Tokens(s string) []string {
	var tokens []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// checkTokens records a diagnostic for every token of option that fails valid.
func (m *Module) checkTokens(v *osgconf.Validation, option, what string, valid func(string) bool) {
	for _, t := range Tokens(m.StringValue(option)) {
		if !valid(t) {
			v.Errorf(option, "%q is not a valid %v", t, what)
		}
	}
}

func (m *Module) Validate(v *osgconf.Validation) {
	if u := m.StringValue(userKey); !v.User(u) {
		v.Errorf(userKey, "%q is not a valid user", u)
	}
	domain := func(s string) bool { return v.Domain(s, false) }
	if m.BoolValue(ceProbesKey) && len(Tokens(m.StringValue(ceHostsKey))) == 0 {
		v.Errorf(ceHostsKey, "required when %v is enabled", ceProbesKey)
	}
	m.checkTokens(v, ceHostsKey, "domain", domain)
	if m.BoolValue(gridftpProbesKey) && len(Tokens(m.StringValue(gridftpHostsKey))) == 0 {
		v.Errorf(gridftpHostsKey, "required when %v is enabled", gridftpProbesKey)
	}
	m.checkTokens(v, gridftpHostsKey, "domain", domain)
	m.checkTokens(v, gratiaProbesKey, "gratia probe", GratiaProbes.Has)
	if m.BoolValue(serviceCertKey) {
		for _, key := range []string{certFileKey, keyFileKey} {
			if p := m.StringValue(key); !v.File(p) {
				v.Errorf(key, "non-existent file %q, required when %v is set", p, serviceCertKey)
			}
		}
	}
}

func (m *Module) Apply(ctx context.Context, host osgconf.Host, _ osgconf.Attributes) error {
	args := []string{"--user", m.StringValue(userKey)}
	if m.BoolValue(ceProbesKey) {
		args = append(args, "--ce-probes", "--ce-uri", strings.Join(Tokens(m.StringValue(ceHostsKey)), ","))
	}
	if m.BoolValue(gridftpProbesKey) {
		args = append(args, "--gridftp-probes", "--gridftp-uri", strings.Join(Tokens(m.StringValue(gridftpHostsKey)), ","))
	}
	if probes := Tokens(m.StringValue(gratiaProbesKey)); len(probes) > 0 {
		args = append(args, "--gratia-probes", strings.Join(probes, ","))
	}
	if m.BoolValue(serviceCertKey) {
		args = append(args, "--use-service-cert", "--rsv-cert-file", m.StringValue(certFileKey), "--rsv-key-file", m.StringValue(keyFileKey))
	}
	if m.BoolValue(apacheKey) {
		args = append(args, "--setup-for-apache")
	}
	if err := m.Configure(ctx, host, "configure_osg_rsv", args...); err != nil {
		return err
	}
	if err := host.EnableService(ctx, "osg-rsv"); err != nil {
		return fmt.Errorf("enable osg-rsv: %w", err)
	}
	if m.BoolValue(apacheKey) {
		return host.EnableService(ctx, "apache")
	}
	return nil
}
