// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// package test contains helpers for writing tests
package test

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/osgconf/osgconf/pkg/validate"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/sets"
)

// SkipIfNoCommand skips a test if the cmd is not found in PATH
func SkipIfNoCommand(t *testing.T, cmd string) {
	t.Helper()
	if _, err := exec.LookPath(cmd); err != nil {
		skipf(t, "command %q not available", cmd)
	}
}

func skipf(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	msg := fmt.Sprintf(format, args...)
	noSkip := os.Getenv("TEST_NO_SKIP")
	if noSkip != "" {
		t.Fatalf("TEST_NO_SKIP=%v failing: %v", noSkip, msg)
	} else {
		t.Skip(msg)
	}
}

// ExecError extracts stderr if err is an exec.ExitError
func ExecError(err error) error {
	if ex, ok := err.(*exec.ExitError); ok {
		return fmt.Errorf("%v: %v", err, string(ex.Stderr))
	}
	return err
}

// PanicErr panics if err is not nil
func PanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// Must panics if err is not nil, else returns v.
func Must[T any](v T, err error) T { PanicErr(err); return v }

// Fs returns an in-memory filesystem containing files.
// A name ending in "/" creates a directory, a name ending in "*" creates an executable.
func Fs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		switch {
		case strings.HasSuffix(name, "/"):
			require.NoError(t, fs.MkdirAll(name, 0o755))
		case strings.HasSuffix(name, "*"):
			require.NoError(t, afero.WriteFile(fs, strings.TrimSuffix(name, "*"), []byte(data), 0o755))
		default:
			require.NoError(t, afero.WriteFile(fs, name, []byte(data), 0o644))
		}
	}
	return fs
}

// Checker returns a validation checker over fs that knows only the given users and hosts.
func Checker(fs afero.Fs, users []string, hosts []string) *validate.Checker {
	u, h := sets.New(users...), sets.New(hosts...)
	return &validate.Checker{
		Fs: fs,
		LookupUser: func(name string) error {
			if !u.Has(name) {
				return fmt.Errorf("unknown user %q", name)
			}
			return nil
		},
		LookupHost: func(name string) ([]string, error) {
			if !h.Has(name) {
				return nil, fmt.Errorf("no such host %q", name)
			}
			return []string{"192.0.2.1"}, nil
		},
	}
}

// Log captures log messages.
type Log struct {
	mu       sync.Mutex
	messages []string
}

// Logger returns a logger that records every message, at any verbosity, in the returned Log.
func Logger() (logr.Logger, *Log) {
	l := &Log{}
	return funcr.New(func(prefix, args string) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.messages = append(l.messages, strings.TrimSpace(prefix+" "+args))
	}, funcr.Options{Verbosity: 9}), l
}

// Messages returns the recorded messages.
func (l *Log) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// Grep returns the recorded messages containing s.
func (l *Log) Grep(s string) []string {
	var found []string
	for _, m := range l.Messages() {
		if strings.Contains(m, s) {
			found = append(found, m)
		}
	}
	return found
}
