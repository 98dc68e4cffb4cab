// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"cmp"
	"os"
	"path/filepath"

	"github.com/osgconf/osgconf/internal/pkg/logging"
	"github.com/osgconf/osgconf/pkg/build"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/spf13/cobra"
)

const (
	configDirEnv     = "OSGCONF_CONFIG_DIR"
	defaultConfigDir = "/etc/osg/config.d"
	defaultLockFile  = "/var/lock/osg-configure.lock"
)

var (
	rootCmd = &cobra.Command{
		Use:           "osg-configure",
		Short:         "Check and apply the grid gateway configuration",
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	log = logging.Log()

	// Global Flags
	configDir      *string
	installRoot    *string
	attributesFile *string
	sudoersFile    *string
	serviceManager *string
	lockFile       *string
	metricsFile    *string
	verbose        *int
	panicOnErr     *bool
)

func init() {
	panicOnErr = rootCmd.PersistentFlags().Bool("panic", false, "panic on error instead of exit code 1")
	verbose = rootCmd.PersistentFlags().IntP("verbose", "v", 0, "Verbosity for logging")
	configDir = rootCmd.PersistentFlags().StringP("config-dir", "c", cmp.Or(os.Getenv(configDirEnv), defaultConfigDir),
		"Directory of configuration files, env "+configDirEnv)
	installRoot = rootCmd.PersistentFlags().String("install-root", cmp.Or(os.Getenv(osgconf.InstallRootEnv), osgconf.DefaultInstallRoot),
		"Install root of the grid software, env "+osgconf.InstallRootEnv)
	attributesFile = rootCmd.PersistentFlags().String("attributes-file", "", "Host attribute file (default <install-root>/monitoring/osg-attributes.conf)")
	sudoersFile = rootCmd.PersistentFlags().String("sudoers-file", "", "Example sudoers file written by job managers (default <install-root>/osg/etc/sudoers.example)")
	serviceManager = rootCmd.PersistentFlags().String("service-manager", "", "Service manager command (default <install-root>/vdt/sbin/vdt-control)")
	lockFile = rootCmd.PersistentFlags().String("lock-file", defaultLockFile, "Lock file preventing concurrent configure runs")
	metricsFile = rootCmd.PersistentFlags().String("metrics-file", "", "Write run metrics to this file in Prometheus text format")
	cobra.OnInitialize(func() { logging.Init(*verbose) }) // After flags are parsed
}

func attributesPath() string {
	return cmp.Or(*attributesFile, filepath.Join(*installRoot, "monitoring", "osg-attributes.conf"))
}
