// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package modtest runs the gateway modules over an in-memory host for tests.
package modtest

import (
	"context"
	"testing"

	"github.com/osgconf/osgconf/internal/pkg/test"
	"github.com/osgconf/osgconf/pkg/adapter"
	"github.com/osgconf/osgconf/pkg/configfile"
	"github.com/osgconf/osgconf/pkg/engine"
	"github.com/osgconf/osgconf/pkg/modules"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/stretchr/testify/require"
)

// Host describes the simulated host.
type Host struct {
	Files map[string]string // See [test.Fs].
	Env   map[string]string
	Users []string
	Hosts []string
	// SudoersFile is passed to [modules.Options].
	SudoersFile string
}

// Site is a parsed configuration.
type Site struct {
	Engine *engine.Engine
	Host   *adapter.Fake
	Log    *test.Log
}

// Parse parses text with every module. Parsing must succeed.
func Parse(t *testing.T, text string, h Host) *Site {
	t.Helper()
	s, err := TryParse(t, text, h)
	require.NoError(t, err)
	return s
}

// TryParse is like [Parse] but returns the parse error.
func TryParse(t *testing.T, text string, h Host) (*Site, error) {
	t.Helper()
	cfg := Config(t, text)
	l, log := test.Logger()
	s := &Site{Host: adapter.NewFake(), Log: log}
	e, err := engine.Build().
		Modules(modules.All(modules.Options{SudoersFile: h.SudoersFile})...).
		Logger(l).
		Host(s.Host).
		Checker(test.Checker(test.Fs(t, h.Files), h.Users, h.Hosts)).
		Getenv(func(k string) string { return h.Env[k] }).
		Engine()
	require.NoError(t, err)
	s.Engine = e
	return s, e.Parse(cfg)
}

// Config loads text as a configuration file. Loading must succeed.
func Config(t *testing.T, text string) *configfile.Config {
	t.Helper()
	cfg, err := configfile.Parse(t.Name()+".ini", []byte(text))
	require.NoError(t, err)
	return cfg
}

// Module returns a registered module by name.
func (s *Site) Module(name string) osgconf.Module { return s.Engine.Registry().Module(name) }

// Attributes returns the formatted attributes of enabled modules.
func (s *Site) Attributes() map[string]string { return s.Engine.Attributes().Strings() }

// Diagnostics validates and returns the diagnostics for one module.
func (s *Site) Diagnostics(module string) []string {
	var messages []string
	if err := s.Engine.Validate(); err != nil {
		for _, d := range err.(osgconf.ValidationError).Diagnostics {
			if d.Module == module {
				messages = append(messages, d.Error())
			}
		}
	}
	return messages
}

// Apply validates then applies, returning the recorded host calls.
func (s *Site) Apply(t *testing.T, only ...string) []string {
	t.Helper()
	require.NoError(t, s.Engine.Validate())
	require.NoError(t, s.Engine.Apply(context.Background(), only...))
	return s.Host.Strings()
}
