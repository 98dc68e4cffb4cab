// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package adapter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/osgconf/osgconf/internal/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing(t *testing.T) {
	out := []byte(`Service                 | Type   | Desired State
------------------------+--------+--------------
fetch-crl               | cron   | enable
vdt-rotate-logs|cron|enable
gums-client-cron        | cron   | do not enable
globus-gatekeeper       | inetd  | enable
`)
	services, err := ParseListing(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"fetch-crl":         true,
		"vdt-rotate-logs":   true,
		"gums-client-cron":  false,
		"globus-gatekeeper": true,
	}, services)
}

func script(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body+"\n"), 0o755))
}

func newExec(t *testing.T) *Exec {
	test.SkipIfNoCommand(t, "sh")
	root := t.TempDir()
	e := New(root)
	require.NoError(t, os.MkdirAll(e.SetupDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(e.ServiceManager), 0o755))
	e.Stdout, e.Stderr = io.Discard, io.Discard
	return e
}

func TestExec_ConfigureService(t *testing.T) {
	e := newExec(t)
	ctx := context.Background()
	script(t, e.SetupDir, "configure_ok", `test "$1" = "--flag" || exit 3`)
	script(t, e.SetupDir, "configure_fail", "exit 1")

	ok, err := e.ConfigureService(ctx, "configure_ok", "--flag")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.ConfigureService(ctx, "configure_ok", "--other")
	require.NoError(t, err)
	assert.False(t, ok, "non-zero exit is a failed result")

	ok, err = e.ConfigureService(ctx, "configure_fail")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.ConfigureService(ctx, "configure_missing")
	assert.Error(t, err, "a script that cannot run is an error")
}

func TestExec_Services(t *testing.T) {
	e := newExec(t)
	ctx := context.Background()
	script(t, filepath.Dir(e.ServiceManager), filepath.Base(e.ServiceManager), `
case "$1" in
--enable|--disable) exit 0 ;;
--list) echo "condor-cron   | init | enable  "; echo "xrootd | init | do not enable" ;;
*) echo "bad usage" >&2; exit 2 ;;
esac`)
	require.NoError(t, e.EnableService(ctx, "condor-cron"))
	require.NoError(t, e.DisableService(ctx, "xrootd"))
	enabled, err := e.ServiceEnabled(ctx, "condor-cron")
	require.NoError(t, err)
	assert.True(t, enabled)
	enabled, err = e.ServiceEnabled(ctx, "xrootd")
	require.NoError(t, err)
	assert.False(t, enabled)
	enabled, err = e.ServiceEnabled(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, enabled)

	_, err = e.control(ctx, "--bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad usage")
}

func TestExec_WriteFile(t *testing.T) {
	e := New(t.TempDir())
	path := filepath.Join(t.TempDir(), "sudoers.example")
	require.NoError(t, e.WriteFile(path, []byte("one\n")))
	require.NoError(t, e.WriteFile(path, []byte("two\n")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(data))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FileMode), fi.Mode().Perm())
}

func TestFake(t *testing.T) {
	f := NewFake()
	f.Fail.Insert("configure_bad")
	ctx := context.Background()
	ok, _ := f.ConfigureService(ctx, "configure_condor", "--server", "y")
	assert.True(t, ok)
	ok, _ = f.ConfigureService(ctx, "configure_bad")
	assert.False(t, ok)
	_ = f.EnableService(ctx, "globus-gatekeeper")
	_ = f.DisableService(ctx, "edg-mkgridmap")
	_ = f.WriteFile("/x", []byte("data"))
	enabled, _ := f.ServiceEnabled(ctx, "globus-gatekeeper")
	assert.True(t, enabled)
	assert.Equal(t, []string{
		"configure configure_condor --server y",
		"configure configure_bad",
		"enable globus-gatekeeper",
		"disable edg-mkgridmap",
		"write /x",
	}, f.Strings())
	assert.Equal(t, "data", string(f.Files["/x"]))
}
