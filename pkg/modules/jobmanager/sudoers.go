// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package jobmanager

import (
	"bytes"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

// SudoUsers run the gateway and need sudo access to run jobs as mapped users.
var SudoUsers = []string{"daemon"}

// The gridmap form wraps each command so that the target user must appear in the grid-mapfile.
// Authorization services (prima, xacml) map users themselves and run the commands directly.
var sudoersTemplate = template.Must(template.New("sudoers").Funcs(sprig.TxtFuncMap()).Parse(`
# Example sudoers entries for the {{ .Manager }} job manager, {{ .Mode | upper }} authorization.
# Generated by osg-configure. Copy into /etc/sudoers with visudo.
Runas_Alias GLOBUSUSERS = ALL, !root
{{- $prefix := ternary "" (printf "%v " .Wrapper) .Direct }}
{{- range .Users }}
{{ . }} ALL=(GLOBUSUSERS) NOPASSWD: SETENV: {{ $prefix }}{{ $.Globus }}/libexec/globus-job-manager-script.pl *
{{ . }} ALL=(GLOBUSUSERS) NOPASSWD: SETENV: {{ $prefix }}{{ $.Globus }}/libexec/globus-gram-local-proxy-tool *
{{- end }}
`))

type sudoersData struct {
	Manager, Mode, Globus, Wrapper string
	Direct                         bool
	Users                          []string
}

// Sudoers renders the example sudoers file.
// direct is true when an authorization service maps users, false for the grid-mapfile wrapper form.
func Sudoers(manager, mode, globus string, direct bool, users []string) ([]byte, error) {
	w := &bytes.Buffer{}
	err := sudoersTemplate.Execute(w, sudoersData{
		Manager: manager,
		Mode:    mode,
		Globus:  filepath.Clean(globus),
		Wrapper: filepath.Join(filepath.Clean(globus), "libexec", "globus-gridmap-and-execute") + " -g /etc/grid-security/grid-mapfile",
		Direct:  direct,
		Users:   users,
	})
	return bytes.TrimLeft(w.Bytes(), "\n"), err
}

// DirectAuthorization is true for authorization methods that map users without the grid-mapfile.
func DirectAuthorization(method string) bool { return method == "prima" || method == "xacml" }

func (m *Module) sudoersPath() string {
	if m.SudoersFile != "" {
		return m.SudoersFile
	}
	return filepath.Join(m.installRoot, "osg", "etc", "sudoers.example")
}

func (m *Module) writeSudoers(host osgconf.Host) error {
	mode := m.authorization
	if mode == "" {
		mode = "gridmap"
	}
	data, err := Sudoers(m.engine.Name, mode, m.globusLocation, DirectAuthorization(mode), SudoUsers)
	if err != nil {
		return err
	}
	return host.WriteFile(m.sudoersPath(), data)
}
