// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package jobmanager_test

import (
	"strings"
	"testing"

	"github.com/osgconf/osgconf/internal/pkg/test/modtest"
	"github.com/osgconf/osgconf/pkg/modules/jobmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSudoers(t *testing.T) {
	data, err := jobmanager.Sudoers("PBS", "gridmap", "/opt/osg/globus/", false, []string{"daemon"})
	require.NoError(t, err)
	assert.Equal(t, `# Example sudoers entries for the PBS job manager, GRIDMAP authorization.
# Generated by osg-configure. Copy into /etc/sudoers with visudo.
Runas_Alias GLOBUSUSERS = ALL, !root
daemon ALL=(GLOBUSUSERS) NOPASSWD: SETENV: /opt/osg/globus/libexec/globus-gridmap-and-execute -g /etc/grid-security/grid-mapfile /opt/osg/globus/libexec/globus-job-manager-script.pl *
daemon ALL=(GLOBUSUSERS) NOPASSWD: SETENV: /opt/osg/globus/libexec/globus-gridmap-and-execute -g /etc/grid-security/grid-mapfile /opt/osg/globus/libexec/globus-gram-local-proxy-tool *
`, string(data))

	data, err = jobmanager.Sudoers("PBS", "xacml", "/opt/osg/globus", true, []string{"daemon", "globus"})
	require.NoError(t, err)
	assert.Equal(t, `# Example sudoers entries for the PBS job manager, XACML authorization.
# Generated by osg-configure. Copy into /etc/sudoers with visudo.
Runas_Alias GLOBUSUSERS = ALL, !root
daemon ALL=(GLOBUSUSERS) NOPASSWD: SETENV: /opt/osg/globus/libexec/globus-job-manager-script.pl *
daemon ALL=(GLOBUSUSERS) NOPASSWD: SETENV: /opt/osg/globus/libexec/globus-gram-local-proxy-tool *
globus ALL=(GLOBUSUSERS) NOPASSWD: SETENV: /opt/osg/globus/libexec/globus-job-manager-script.pl *
globus ALL=(GLOBUSUSERS) NOPASSWD: SETENV: /opt/osg/globus/libexec/globus-gram-local-proxy-tool *
`, string(data))
}

const pbsINI = `
[Install Locations]
enabled = True
osg = /usr/osg

[Misc Services]
enabled = True
authorization_method = %v
gums_host = gums.example.org

[PBS]
enabled = True
pbs_location = /opt/pbs
job_contact = ce.example.org/jobmanager-pbs
util_contact = ce.example.org/jobmanager-pbs
`

// The authorization method of the services section selects the sudoers form.
func TestSudoers_Authorization(t *testing.T) {
	files := map[string]string{"/usr/osg/": "", "/usr/osg/globus/": "", "/opt/pbs/": ""}
	for _, x := range []struct {
		method  string
		wrapper bool
	}{
		{"prima", false},
		{"xacml", false},
		{"GridMap", true},
	} {
		t.Run(x.method, func(t *testing.T) {
			s := modtest.Parse(t, strings.Replace(pbsINI, "%v", x.method, 1), modtest.Host{Files: files})
			s.Apply(t)
			data := string(s.Host.Files["/usr/osg/osg/etc/sudoers.example"])
			require.NotEmpty(t, data)
			assert.Equal(t, x.wrapper, strings.Contains(data, "globus-gridmap-and-execute"), data)
			assert.Equal(t, 2, strings.Count(data, "daemon ALL="))
			assert.Contains(t, data, " /usr/osg/globus/libexec/globus-job-manager-script.pl *\n")
		})
	}
}

func TestJobManager_SudoersFile(t *testing.T) {
	s := modtest.Parse(t, strings.Replace(pbsINI, "%v", "gridmap", 1), modtest.Host{
		Files:       map[string]string{"/usr/osg/": "", "/usr/osg/globus/": "", "/opt/pbs/": ""},
		SudoersFile: "/tmp/sudoers",
	})
	assert.Contains(t, s.Apply(t), "write /tmp/sudoers")
}

func TestJobManager_Engines(t *testing.T) {
	for _, x := range []struct {
		ini   string
		env   map[string]string
		files map[string]string
		attrs map[string]string
		args  string
	}{
		{
			ini:   "[PBS]\nenabled = True\npbs_server = pbs.example.org\n",
			env:   map[string]string{"PBS_HOME": "/var/spool/pbs"},
			files: map[string]string{"/var/spool/pbs/": ""},
			attrs: map[string]string{"OSG_JOB_MANAGER": "PBS", "OSG_PBS_LOCATION": "/var/spool/pbs", "OSG_PBS_SERVER": "pbs.example.org"},
			args:  "configure configure_pbs --server y --pbs-location /var/spool/pbs --pbs-server pbs.example.org",
		},
		{
			ini:   "[LSF]\nenabled = True\nlsf_location = /opt/lsf\naccept_limited = yes\n",
			files: map[string]string{"/opt/lsf/": "", "/opt/lsf/conf/profile.lsf": ""},
			attrs: map[string]string{"OSG_JOB_MANAGER": "LSF", "OSG_LSF_PROFILE": "/opt/lsf/conf/profile.lsf", "OSG_ACCEPT_LIMITED": "Y"},
			args:  "configure configure_lsf --server y --accept-limited --lsf-location /opt/lsf --lsf-profile /opt/lsf/conf/profile.lsf",
		},
		{
			ini:   "[SGE]\nenabled = True\nsge_location = /opt/sge\n",
			env:   map[string]string{"SGE_ROOT": "/opt/sge/root"},
			files: map[string]string{"/opt/sge/": "", "/opt/sge/root/default/": ""},
			attrs: map[string]string{"OSG_JOB_MANAGER": "SGE", "OSG_SGE_ROOT": "/opt/sge/root", "OSG_SGE_CELL": "default"},
			args:  "configure configure_sge --server y --sge-root /opt/sge/root --sge-cell default",
		},
	} {
		t.Run(x.attrs["OSG_JOB_MANAGER"], func(t *testing.T) {
			key := strings.ToLower(x.attrs["OSG_JOB_MANAGER"])
			contacts := "job_contact = ce.example.org/jobmanager-" + key + "\nutil_contact = ce.example.org/jobmanager-" + key + "\n"
			s := modtest.Parse(t, x.ini+contacts, modtest.Host{Env: x.env, Files: x.files})
			attrs := s.Attributes()
			for k, v := range x.attrs {
				assert.Equal(t, v, attrs[k], k)
			}
			calls := s.Apply(t)
			require.NotEmpty(t, calls)
			assert.Equal(t, x.args, calls[0])
			assert.Contains(t, calls, "disable globus-ws")
		})
	}
}

func TestJobManager_InvalidContact(t *testing.T) {
	s := modtest.Parse(t, `
[PBS]
enabled = True
pbs_location = /opt/pbs
job_contact = ce.example.org/jobmanager-condor
util_contact = not a host/jobmanager-pbs
`, modtest.Host{Files: map[string]string{"/opt/pbs/": ""}})
	assert.Equal(t, []string{
		`[PBS] job_contact: "ce.example.org/jobmanager-condor" is not a valid contact, expected host[:port]/jobmanager-pbs`,
		`[PBS] util_contact: "not a host/jobmanager-pbs" is not a valid contact, expected host[:port]/jobmanager-pbs`,
	}, s.Diagnostics("pbs"))
}
