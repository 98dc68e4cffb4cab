// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package adapter runs the external commands that change the host: setup scripts and the service manager.
//
// Commands are not retried. A command that runs and exits non-zero is an expected outcome
// and is reported as a failed result, not as an error.
package adapter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/renameio/v2"
	"github.com/osgconf/osgconf/internal/pkg/logging"
	"github.com/osgconf/osgconf/pkg/osgconf"
)

// SetupDir is the location of setup scripts relative to the install root.
const SetupDir = "vdt/setup"

// ServiceManager is the default service manager command relative to the install root.
const ServiceManager = "vdt/sbin/vdt-control"

// FileMode is the permission of files written by [Exec.WriteFile].
const FileMode = 0o644

// Exec is a [osgconf.Host] that runs real commands.
type Exec struct {
	// SetupDir contains the configure_* scripts.
	SetupDir string
	// ServiceManager is the path of the service manager command.
	ServiceManager string
	// Stdout and Stderr receive setup script output, default os.Stdout and os.Stderr.
	Stdout, Stderr io.Writer

	log logr.Logger
}

var _ osgconf.Host = &Exec{}

// New returns an adapter for an install root, using the default setup directory and service manager.
func New(installRoot string) *Exec {
	return &Exec{
		SetupDir:       filepath.Join(installRoot, SetupDir),
		ServiceManager: filepath.Join(installRoot, ServiceManager),
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		log:            logging.Log().WithName("adapter"),
	}
}

// ConfigureService runs script from the setup directory with args, inheriting stdio.
func (e *Exec) ConfigureService(ctx context.Context, script string, args ...string) (bool, error) {
	path := script
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.SetupDir, script)
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, e.Stdout, e.Stderr
	e.log.V(1).Info("Running setup script", "cmd", cmd.String())
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.log.Info("Setup script failed", "script", script, "exit", exitErr.ExitCode())
		return false, nil
	}
	return err == nil, err
}

func (e *Exec) EnableService(ctx context.Context, name string) error {
	_, err := e.control(ctx, "--enable", name)
	return err
}

func (e *Exec) DisableService(ctx context.Context, name string) error {
	_, err := e.control(ctx, "--disable", name)
	return err
}

// ServiceEnabled reports the desired state recorded by the service manager.
// An unknown service is not enabled.
func (e *Exec) ServiceEnabled(ctx context.Context, name string) (bool, error) {
	out, err := e.control(ctx, "--list", name)
	if err != nil {
		return false, err
	}
	services, err := ParseListing(out)
	if err != nil {
		return false, err
	}
	return services[name], nil
}

// WriteFile atomically replaces path and sets mode 0644 regardless of umask.
func (e *Exec) WriteFile(path string, data []byte) error {
	e.log.V(1).Info("Writing file", "path", path)
	if err := renameio.WriteFile(path, data, FileMode); err != nil {
		return err
	}
	return os.Chmod(path, FileMode)
}

func (e *Exec) control(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.ServiceManager, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	e.log.V(1).Info("Running service manager", "cmd", cmd.String())
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%v: %w: %v", cmd, err, msg)
		}
		return out, fmt.Errorf("%v: %w", cmd, err)
	}
	return out, nil
}

// listing matches one row of the service manager listing: name | type | desired state.
var listing = regexp.MustCompile(`^(\S+)\s*\|\s*(\S+)\s*\|\s*(.+?)\s*$`)

// ParseListing parses service manager output into a map of service name to enabled.
// Column widths vary and rows may have trailing whitespace. Header and separator rows are skipped.
func ParseListing(out []byte) (map[string]bool, error) {
	services := map[string]bool{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := listing.FindStringSubmatch(scanner.Text())
		if m == nil || strings.EqualFold(m[1], "service") {
			continue
		}
		services[m[1]] = strings.EqualFold(m[3], "enable") || strings.EqualFold(m[3], "enabled")
	}
	return services, scanner.Err()
}
