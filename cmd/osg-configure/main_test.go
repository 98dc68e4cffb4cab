// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osgconf/osgconf/internal/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_verify(t *testing.T) {
	out, err := command(t, "verify").Output()
	require.NoError(t, test.ExecError(err))
	assert.Equal(t, "Configuration is valid.\n", string(out))
}

func TestMain_verify_invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "squid.ini"),
		[]byte("[Squid]\nenabled = True\nlocation = localhost:99999\ncache_size = 1\nmemory_size = 1\n"), 0o644))
	cmd := exec.Command(filepath.Join(tmpDir, "osg-configure"), "-c", dir, "verify")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, stderr.String(), `"99999" is not a valid port`)
}

func TestMain_list(t *testing.T) {
	out, err := command(t, "list").Output()
	require.NoError(t, test.ExecError(err))
	rows := map[string][]string{}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		f := strings.Fields(line)
		rows[f[0]] = f
	}
	assert.Equal(t, []string{"MODULE", "SECTION", "STATE", "SEPARATE"}, rows["MODULE"])
	assert.Equal(t, []string{"squid", "Squid", "enabled", "true"}, rows["squid"])
	assert.Equal(t, []string{"condor", "Condor", "disabled", "false"}, rows["condor"])
	assert.Len(t, rows, 13)
}

func TestMain_attributes(t *testing.T) {
	out, err := command(t, "attributes", "-o", "json").Output()
	require.NoError(t, test.ExecError(err))
	var attrs map[string]string
	require.NoError(t, json.Unmarshal(out, &attrs))
	assert.Equal(t, "localhost:3128", attrs["OSG_SQUID_LOCATION"])
	assert.Equal(t, "2048", attrs["OSG_SQUID_CACHE_SIZE"])
	assert.Equal(t, "hello", attrs["MY_VAR"])
	assert.Equal(t, "UNAVAILABLE", attrs["OSG_HADOOP_NAMENODE"])
}

func TestMain_normalize(t *testing.T) {
	out, err := command(t, "normalize", "-").Output()
	require.NoError(t, test.ExecError(err))
	s := string(out)
	assert.Contains(t, s, "[Squid]")
	assert.Contains(t, s, "localhost:3128")
	assert.Contains(t, s, "[Local Settings]")
	assert.Contains(t, s, "MY_VAR")
	assert.NotContains(t, s, "[Condor]")
}

func TestMain_normalize_file(t *testing.T) {
	output := filepath.Join(t.TempDir(), "normal.ini")
	diff, err := command(t, "normalize", "--diff", output).Output()
	require.NoError(t, test.ExecError(err))
	assert.Contains(t, string(diff), "+[Squid]")
	assert.NoFileExists(t, output)

	_, err = command(t, "normalize", output).Output()
	require.NoError(t, test.ExecError(err))
	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// The normalized file is itself a valid configuration that normalizes to the same text.
	want, err := os.ReadFile(output)
	require.NoError(t, err)
	dir := filepath.Dir(output)
	cmd := exec.Command(filepath.Join(tmpDir, "osg-configure"), "-c", dir, "normalize", "-")
	got, err := cmd.Output()
	require.NoError(t, test.ExecError(err))
	assert.Equal(t, string(want), string(got))
}

func TestMain_normalize_from_attributes(t *testing.T) {
	dir := t.TempDir()
	attrs := filepath.Join(dir, "osg-attributes.conf")
	require.NoError(t, os.WriteFile(attrs, []byte("OSG_SQUID_LOCATION=\"h:3128\"\nOSG_SQUID_POLICY=\"LRU\"\n"), 0o644))

	// No configuration directory: every section is a candidate.
	cmd := exec.Command(filepath.Join(tmpDir, "osg-configure"), "-c", filepath.Join(dir, "none"),
		"normalize", "--from-attributes", attrs, "-")
	out, err := cmd.Output()
	require.NoError(t, test.ExecError(err))
	assert.Contains(t, string(out), "[Squid]")
	assert.Contains(t, string(out), "h:3128")

	// A configuration that fails lint is an error, not a missing configuration.
	config := filepath.Join(dir, "config.d")
	require.NoError(t, os.Mkdir(config, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(config, "squid.ini"), []byte("[Squid]\nenabled = False\n[squid]\nenabled = True\n"), 0o644))
	cmd = exec.Command(filepath.Join(tmpDir, "osg-configure"), "-c", config,
		"normalize", "--from-attributes", attrs, "-")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err = cmd.Output()
	require.Error(t, err)
	assert.Empty(t, string(out))
	assert.Contains(t, stderr.String(), "section [squid] is already defined")
}

func TestMain_graph(t *testing.T) {
	out, err := command(t, "graph").Output()
	require.NoError(t, test.ExecError(err))
	assert.Contains(t, string(out), "digraph")
	assert.Contains(t, string(out), "hadoop -> xrootd")
}

func TestMain_version(t *testing.T) {
	out, err := command(t, "version").Output()
	require.NoError(t, test.ExecError(err))
	assert.NotEmpty(t, strings.TrimSpace(string(out)))
}

func TestMain(m *testing.M) {
	// Build once to run in tests, much faster than using 'go run' for each test.
	tmpDir = test.Must(os.MkdirTemp("", "osg-configure_test"))
	defer func() { _ = os.RemoveAll(tmpDir) }()
	cmd := exec.Command("go", "build", "-o", tmpDir)
	cmd.Stderr = os.Stderr
	test.PanicErr(cmd.Run())
	os.Exit(m.Run())
}

var tmpDir string

func command(t *testing.T, args ...string) *exec.Cmd {
	commonArgs := []string{"-v9", "-c", "testdata/config.d", "--panic"}
	cmd := exec.Command(filepath.Join(tmpDir, "osg-configure"), append(commonArgs, args...)...)
	cmd.Stderr = os.Stderr
	return cmd
}
