// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/osgconf/osgconf/internal/pkg/test"
	"github.com/osgconf/osgconf/pkg/adapter"
	"github.com/osgconf/osgconf/pkg/configfile"
	"github.com/osgconf/osgconf/pkg/modules"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is a module that enables a service named after itself when applied.
type step struct {
	*osgconf.Base
	fail     bool
	needs    []string
	provides map[string]string
	got      map[string]string
}

func newStep(name string, opts ...osgconf.BaseOption) *step {
	return &step{Base: osgconf.NewBase(name, []string{name}, osgconf.Schema{{Key: "value", Attr: name + "_VALUE", Optional: true}}, opts...)}
}

func (s *step) Apply(ctx context.Context, host osgconf.Host, _ osgconf.Attributes) error {
	if s.fail {
		return errors.New("failed")
	}
	return host.EnableService(ctx, s.Name())
}

// resolver is a step that needs and provides values.
type resolver struct{ *step }

func (r resolver) Needs() []string { return r.needs }
func (r resolver) Resolve(res osgconf.Resolution) error {
	for _, k := range r.needs {
		r.got[k], _ = res.Lookup(k)
	}
	return nil
}
func (r resolver) Provides() []string {
	var keys []string
	for k := range r.provides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
func (r resolver) Provide(osgconf.Config) map[string]string { return r.provides }

func newResolver(name string, needs []string, provides map[string]string) resolver {
	s := newStep(name)
	s.needs, s.provides, s.got = needs, provides, map[string]string{}
	return resolver{s}
}

func parse(t *testing.T, text string) *configfile.Config {
	t.Helper()
	c, err := configfile.Parse("test.ini", []byte(text))
	require.NoError(t, err)
	return c
}

func newEngine(t *testing.T, host osgconf.Host, mods ...osgconf.Module) *Engine {
	t.Helper()
	l, _ := test.Logger()
	e, err := Build().Modules(mods...).Logger(l).Host(host).
		Checker(test.Checker(test.Fs(t, nil), nil, nil)).
		Getenv(func(string) string { return "" }).Engine()
	require.NoError(t, err)
	return e
}

func TestNewRegistry(t *testing.T) {
	shared := osgconf.Schema{{Key: "x", Attr: "SHARED"}}
	module := func(name string, opts ...osgconf.BaseOption) *step {
		return &step{Base: osgconf.NewBase(name, []string{name}, shared, opts...)}
	}
	a1, a2 := module("a1", osgconf.ExclusiveGroup("g", "SEL")), module("a2", osgconf.ExclusiveGroup("g", "SEL"))
	_, err := NewRegistry(a1, a2)
	assert.NoError(t, err)
	_, err = NewRegistry(a1, module("other"))
	assert.EqualError(t, err, "attribute SHARED declared by both a1 and other")

	_, err = NewRegistry(newStep("x"), newStep("x"))
	assert.EqualError(t, err, "duplicate module name: x")

	_, err = NewRegistry(newStep("x"), &step{Base: osgconf.NewBase("y", []string{"X"}, nil)})
	assert.EqualError(t, err, "section [X] owned by both x and y")
}

func TestRegistry_Lookup(t *testing.T) {
	a, b := newStep("A"), newStep("B", osgconf.FreeForm())
	r, err := NewRegistry(a, b)
	require.NoError(t, err)
	assert.Equal(t, a, r.Owner("a"))
	assert.Nil(t, r.Owner("C"))
	assert.Equal(t, b, r.Module("B"))
	assert.True(t, r.Claimed("A_VALUE"))
	assert.False(t, r.Claimed("B_VALUE"), "free-form modules do not claim")
	assert.Equal(t, []osgconf.Module{b}, r.For(parse(t, "[b]\n")))
}

func TestEngine_ResolveOrder(t *testing.T) {
	consumer := newResolver("consumer", []string{"k"}, nil)
	producer := newResolver("producer", nil, map[string]string{"k": "v"})
	e := newEngine(t, nil, consumer, producer, newStep("plain"))
	assert.Equal(t, []osgconf.Module{producer, consumer, e.Registry().Module("plain")}, e.order)

	require.NoError(t, e.Parse(parse(t, "[consumer]\nenabled = True\n[producer]\nenabled = False\n")))
	assert.Equal(t, map[string]string{"k": "v"}, consumer.got)

	dot, err := e.DependencyGraph()
	require.NoError(t, err)
	assert.Contains(t, string(dot), "producer -> consumer")
}

func TestEngine_DependencyErrors(t *testing.T) {
	_, err := Build().Modules(newResolver("a", []string{"missing"}, nil)).Engine()
	assert.EqualError(t, err, "a needs missing, no module provides it")

	_, err = Build().Modules(newResolver("a", nil, map[string]string{"k": ""}), newResolver("b", nil, map[string]string{"k": ""})).Engine()
	assert.EqualError(t, err, "k provided by both a and b")

	_, err = Build().Modules(
		newResolver("a", []string{"b"}, map[string]string{"a": ""}),
		newResolver("b", []string{"a"}, map[string]string{"b": ""})).Engine()
	assert.ErrorContains(t, err, "module dependency cycle")
}

func TestEngine_Apply(t *testing.T) {
	ctx := context.Background()
	host := adapter.NewFake()
	a, b, c := newStep("a"), newStep("b"), newStep("c")
	e := newEngine(t, host, a, b, c)
	cfg := parse(t, "[a]\nenabled = True\n[b]\nenabled = False\n[c]\nenabled = True\n")
	require.NoError(t, e.Configure(ctx, cfg))
	assert.Equal(t, []string{"enable a", "enable c"}, host.Strings())
	assert.Equal(t, 2.0, testutil.ToFloat64(e.Metrics().applied))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.Metrics().success))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.Metrics().modules.WithLabelValues("disabled")))
}

func TestEngine_ApplyStopsOnError(t *testing.T) {
	host := adapter.NewFake()
	a, b, c := newStep("a"), newStep("b"), newStep("c")
	b.fail = true
	e := newEngine(t, host, a, b, c)
	err := e.Configure(context.Background(), parse(t, "[a]\nenabled = True\n[b]\nenabled = True\n[c]\nenabled = True\n"))
	assert.EqualError(t, err, "configure b: failed")
	assert.True(t, osgconf.IsConfigureError(err))
	assert.Equal(t, []string{"enable a"}, host.Strings())
	assert.Equal(t, 0.0, testutil.ToFloat64(e.Metrics().success))
}

func TestEngine_ApplyOnly(t *testing.T) {
	ctx := context.Background()
	host := adapter.NewFake()
	e := newEngine(t, host, newStep("a", osgconf.SeparatelyConfigurable()), newStep("b"))
	require.NoError(t, e.Parse(parse(t, "[a]\nenabled = True\n[b]\nenabled = True\n")))
	require.NoError(t, e.Apply(ctx, "a"))
	assert.Equal(t, []string{"enable a"}, host.Strings())
	assert.EqualError(t, e.Apply(ctx, "b"), "module b cannot be configured on its own")
	assert.EqualError(t, e.Apply(ctx, "z"), "unknown module: z")
	assert.EqualError(t, newEngine(t, nil, newStep("a")).Apply(ctx), "no host to apply configuration to")
}

func TestEngine_NoApplyWhenInvalid(t *testing.T) {
	host := adapter.NewFake()
	e := newEngine(t, host, modules.All(modules.Options{})...)
	err := e.Configure(context.Background(), parse(t, "[Squid]\nenabled = True\nlocation = not a host\ncache_size = 1\nmemory_size = 1\n"))
	assert.True(t, osgconf.IsValidationError(err), "%v", err)
	assert.Empty(t, host.Calls)
}

func TestEngine_ExclusiveGroup(t *testing.T) {
	e := newEngine(t, nil, modules.All(modules.Options{})...)
	err := e.Verify(parse(t, `
[Condor]
enabled = True
job_contact = ce.example.org/jobmanager-condor
util_contact = ce.example.org/jobmanager-condor

[PBS]
enabled = True
job_contact = ce.example.org/jobmanager-pbs
util_contact = ce.example.org/jobmanager-pbs
`))
	var verr osgconf.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Diagnostics, osgconf.Diagnostic{
		Section: "Condor], [PBS",
		Message: "only one jobmanager section may be enabled",
	})
}

const site = `
[DEFAULT]
localhost = ce.example.org

[Install Locations]
enabled = True
osg = /opt/osg

[Misc Services]
enabled = True
authorization_method = gridmap

[Hadoop]
enabled = ignore
namenode = nn.example.org

[Condor]
enabled = True
condor_location = /opt/condor
job_contact = ${localhost}/jobmanager-condor
util_contact = ${localhost}/jobmanager-condor

[PBS]
enabled = False

[Squid]
enabled = True
location = squid.example.org
cache_size = 2048
memory_size = 256

[Local Settings]
enabled = True
My_Site_Var = hello
OSG_JOB_CONTACT = shadowed
`

func TestEngine_Attributes(t *testing.T) {
	l, log := test.Logger()
	e, err := Build().Modules(modules.All(modules.Options{})...).Logger(l).Getenv(func(string) string { return "" }).Engine()
	require.NoError(t, err)
	require.NoError(t, e.Parse(parse(t, site)))
	attrs := e.Attributes()
	assert.Equal(t, "ce.example.org/jobmanager-condor", attrs["OSG_JOB_CONTACT"])
	assert.Equal(t, "Condor", attrs["OSG_JOB_MANAGER"])
	assert.Equal(t, "/opt/condor", attrs["OSG_JOB_MANAGER_HOME"])
	assert.Equal(t, "/opt/condor/etc/condor_config", attrs["OSG_CONDOR_CONFIG"])
	assert.Equal(t, "squid.example.org:3128", attrs["OSG_SQUID_LOCATION"])
	assert.Equal(t, "hello", attrs["My_Site_Var"])
	assert.Equal(t, "/opt/osg/globus", attrs["GLOBUS_LOCATION"])
	assert.NotContains(t, attrs, "OSG_HADOOP_NAMENODE")
	assert.Len(t, log.Grep("option shadows a module attribute"), 1)

	host := e.HostAttributes()
	assert.Equal(t, "UNAVAILABLE", host["OSG_XROOTD_MODE"], "absent module with placeholders")
	assert.NotContains(t, host, "OSG_HADOOP_NAMENODE", "ignored module has no placeholders")
	assert.Equal(t, "ce.example.org/jobmanager-condor", host["OSG_JOB_CONTACT"])
}

// Normalizing the attributes of a configuration and parsing the result gives the same attributes.
func TestEngine_Normalize(t *testing.T) {
	e := newEngine(t, nil, modules.All(modules.Options{})...)
	require.NoError(t, e.Parse(parse(t, site)))
	want := e.Attributes()
	data, err := e.Normalize(want)
	require.NoError(t, err)
	text := string(data)
	assert.Regexp(t, `\[Hadoop\]\nenabled += ignore\nnamenode += nn\.example\.org\n`, text, "ignored section is kept as written")
	assert.NotContains(t, text, "[PBS]")
	assert.NotContains(t, text, "[RSV]")
	assert.NotContains(t, text, "OSG_JOB_CONTACT")

	require.NoError(t, e.Parse(parse(t, text)), text)
	assert.Equal(t, want, e.Attributes(), text)

	again, err := e.Normalize(e.Attributes())
	require.NoError(t, err)
	assert.Equal(t, text, string(again))
}

func TestEngine_NormalizeFromAttributes(t *testing.T) {
	e := newEngine(t, nil, modules.All(modules.Options{})...)
	require.NoError(t, e.Parse(parse(t, "")))
	data, err := e.Normalize(osgconf.Attributes{
		"OSG_JOB_MANAGER":     "PBS",
		"OSG_JOB_CONTACT":     "ce.example.org/jobmanager-pbs",
		"OSG_UTIL_CONTACT":    "ce.example.org/jobmanager-pbs",
		"OSG_WS_GRAM":         "N",
		"OSG_HADOOP_NAMENODE": "UNAVAILABLE",
		"EXTRA":               "x",
	})
	require.NoError(t, err)
	cfg := parse(t, string(data))
	assert.Equal(t, []string{"PBS", "Local Settings"}, cfg.Sections())
	v, _ := cfg.Option("PBS", "wsgram")
	assert.Equal(t, "False", v)
	v, _ = cfg.Option("Local Settings", "EXTRA")
	assert.Equal(t, "x", v)
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osg.ini")
	d, err := Diff(path, []byte("[A]\nx = 1\n"))
	require.NoError(t, err)
	assert.Contains(t, d, "+x = 1")

	require.NoError(t, WriteFile(path, []byte("[A]\nx = 1\n")))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FileMode), fi.Mode().Perm())
	d, err = Diff(path, []byte("[A]\nx = 2\n"))
	require.NoError(t, err)
	assert.Contains(t, d, "-x = 1\n+x = 2\n")
	d, err = Diff(path, []byte("[A]\nx = 1\n"))
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestEngine_AllModules(t *testing.T) {
	_, err := NewRegistry(modules.All(modules.Options{})...)
	require.NoError(t, err)
}
