// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package attrfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	data, err := Format(osgconf.Attributes{
		"OSG_WS_GRAM":          true,
		"OSG_JOB_MANAGER":      "Condor",
		"OSG_SQUID_MEM_CACHE":  256,
		"OSG_XROOTD_MODE":      "UNAVAILABLE",
		"OSG_LOCAL_WITH_SPACE": "a b",
	})
	require.NoError(t, err)
	assert.Equal(t, header+`OSG_JOB_MANAGER=Condor
OSG_LOCAL_WITH_SPACE='a b'
OSG_SQUID_MEM_CACHE=256
OSG_WS_GRAM=Y
OSG_XROOTD_MODE=UNAVAILABLE
`, string(data))
}

func TestFormat_BadName(t *testing.T) {
	_, err := Format(osgconf.Attributes{"not a name": "x"})
	assert.Error(t, err)
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("MY_SITE_VAR"))
	assert.True(t, ValidName("_x1"))
	assert.False(t, ValidName("my-site.var"))
	assert.False(t, ValidName("1X"))
	assert.False(t, ValidName(""))
}

func TestRoundTrip(t *testing.T) {
	attrs := osgconf.Attributes{
		"OSG_JOB_MANAGER":  "Condor",
		"OSG_JOB_CONTACT":  "ce.example.org/jobmanager-condor",
		"OSG_QUOTED":       `it's "quoted" $HOME`,
		"OSG_LINES":        "one\ntwo\n\n",
		"OSG_EMPTY":        "",
		"OSG_WS_GRAM":      false,
		"OSG_REPLICATION":  2,
		"OSG_CACHE_FACTOR": 1.5,
	}
	data, err := Format(attrs)
	require.NoError(t, err)
	got, err := Parse(context.Background(), "attributes.conf", data)
	require.NoError(t, err)
	assert.Equal(t, osgconf.Attributes{
		"OSG_JOB_MANAGER":  "Condor",
		"OSG_JOB_CONTACT":  "ce.example.org/jobmanager-condor",
		"OSG_QUOTED":       `it's "quoted" $HOME`,
		"OSG_LINES":        "one\ntwo\n\n",
		"OSG_EMPTY":        "",
		"OSG_WS_GRAM":      "N",
		"OSG_REPLICATION":  "2",
		"OSG_CACHE_FACTOR": "1.5",
	}, got)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osg-attributes.conf")
	require.NoError(t, Write(path, osgconf.Attributes{"OSG_SITE_NAME": "EXAMPLE"}))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(Mode), fi.Mode().Perm())
	got, err := ReadFile(context.Background(), afero.NewOsFs(), path)
	require.NoError(t, err)
	assert.Equal(t, osgconf.Attributes{"OSG_SITE_NAME": "EXAMPLE"}, got)
}
