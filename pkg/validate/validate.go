// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package validate contains the predicates used by modules to check settings against the host.
//
// Predicates are side-effect free except for domain resolution, which may perform a name-service lookup.
// Host access goes through a [Checker] so tests can substitute an in-memory filesystem,
// a fixed user list and a fake resolver.
package validate

import (
	"fmt"
	"net"
	"os/user"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Unavailable is the sentinel used for values that are deliberately unset.
const Unavailable = "UNAVAILABLE"

// Blank is true if v is nil, the empty string or [Unavailable] in any case.
func Blank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == "" || strings.EqualFold(v, Unavailable)
	case fmt.Stringer:
		return Blank(v.String())
	default:
		return false
	}
}

var (
	domainRE = regexp.MustCompile(`^[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)
	emailRE  = regexp.MustCompile(`^[A-Za-z0-9_.+-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)
)

// Checker runs host-dependent checks.
type Checker struct {
	// Fs is the filesystem used for path checks.
	Fs afero.Fs
	// LookupUser returns an error if the account does not exist.
	LookupUser func(name string) error
	// LookupHost resolves a host name.
	LookupHost func(host string) ([]string, error)
}

// Host returns a Checker for the live host.
func Host() *Checker {
	return &Checker{
		Fs:         afero.NewOsFs(),
		LookupUser: func(name string) error { _, err := user.Lookup(name); return err },
		LookupHost: net.LookupHost,
	}
}

// Domain checks the label grammar of a host name; if resolve is true the name must also resolve.
func (c *Checker) Domain(s string, resolve bool) bool {
	if !domainRE.MatchString(s) {
		return false
	}
	if !resolve {
		return true
	}
	addrs, err := c.LookupHost(s)
	return err == nil && len(addrs) > 0
}

// Email checks for a single '@' address with a restricted character set.
func Email(s string) bool { return emailRE.MatchString(s) }

// File is true if p exists and is a regular file.
func (c *Checker) File(p string) bool {
	if p == "" {
		return false
	}
	fi, err := c.Fs.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// Location is true if p exists and is a file or a directory.
func (c *Checker) Location(p string) bool {
	if p == "" {
		return false
	}
	fi, err := c.Fs.Stat(p)
	return err == nil && (fi.Mode().IsRegular() || fi.IsDir())
}

// Directory is true if p exists and is a directory.
func (c *Checker) Directory(p string) bool {
	if p == "" {
		return false
	}
	fi, err := c.Fs.Stat(p)
	return err == nil && fi.IsDir()
}

// User is true if u is a known account.
func (c *Checker) User(u string) bool {
	return u != "" && c.LookupUser(u) == nil
}

// Executable is true if p is a regular file with an executable bit set.
func (c *Checker) Executable(p string) bool {
	if !c.File(p) {
		return false
	}
	fi, err := c.Fs.Stat(p)
	return err == nil && fi.Mode().Perm()&0o111 != 0
}

// VOName is true for a DNS-style label or a valid domain.
func (c *Checker) VOName(v string) bool {
	if v == "" {
		return false
	}
	return len(validation.IsDNS1123Label(strings.ToLower(v))) == 0 || c.Domain(v, false)
}

// Contact checks the shape host[:port]/<something>-<manager>.
func (c *Checker) Contact(s, manager string) bool {
	hostPort, service, ok := strings.Cut(s, "/")
	if !ok || hostPort == "" {
		return false
	}
	i := strings.LastIndex(service, "-")
	if i <= 0 || service[i+1:] != manager {
		return false
	}
	host, port, hasPort := strings.Cut(hostPort, ":")
	if hasPort {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return false
		}
	}
	return c.Domain(host, false)
}

var booleans = map[string]bool{"true": true, "false": true, "yes": true, "no": true, "1": true, "0": true}

// Boolean is true if s is one of the accepted boolean literals, in any case.
func Boolean(s string) bool { return booleans[strings.ToLower(strings.TrimSpace(s))] }

// OptionGetter looks up an option value in a configuration section.
type OptionGetter interface {
	Option(section, option string) (string, bool)
}

// BooleanOption is true if the option is present and holds a boolean literal.
func BooleanOption(cfg OptionGetter, section, option string) bool {
	v, ok := cfg.Option(section, option)
	return ok && Boolean(v)
}
