// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"os"

	"github.com/osgconf/osgconf/internal/pkg/must"
	"github.com/osgconf/osgconf/pkg/adapter"
	"github.com/osgconf/osgconf/pkg/configfile"
	"github.com/osgconf/osgconf/pkg/engine"
	"github.com/osgconf/osgconf/pkg/modules"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/spf13/afero"
)

// getenv is os.Getenv with the install root taken from the command line.
func getenv(key string) string {
	if key == osgconf.InstallRootEnv {
		return *installRoot
	}
	return os.Getenv(key)
}

func newHost() *adapter.Exec {
	h := adapter.New(*installRoot)
	if *serviceManager != "" {
		h.ServiceManager = *serviceManager
	}
	return h
}

func newEngine(host osgconf.Host) *engine.Engine {
	b := engine.Build().
		Modules(modules.All(modules.Options{SudoersFile: *sudoersFile})...).
		Getenv(getenv)
	if host != nil {
		b.Host(host)
	}
	return must.Must1(b.Engine())
}

// loadConfig loads and lints the configuration directory.
func loadConfig() *configfile.Config {
	log.V(1).Info("Loading configuration", "dir", *configDir)
	return must.Must1(configfile.Load(afero.NewOsFs(), *configDir))
}
