// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/osgconf/osgconf/internal/pkg/must"
	"github.com/osgconf/osgconf/pkg/attrfile"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Validate the configuration and apply it to the host.",
	Long: `Run every phase: lint, parse, validate, then apply each enabled module in order.
Nothing is applied unless validation succeeds. If a module fails to apply the run stops,
and the host may be partially configured. The host attribute file is written on success.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		lock := flock.New(*lockFile)
		locked := must.Must1(lock.TryLock())
		if !locked {
			must.Must(fmt.Errorf("another configure run holds the lock %v", *lockFile))
		}
		defer func() { _ = lock.Unlock() }()

		e := newEngine(newHost())
		if *metricsFile != "" {
			defer func() {
				if err := e.Metrics().WriteFile(*metricsFile); err != nil {
					log.Error(err, "Cannot write metrics", "file", *metricsFile)
				}
			}()
		}
		var only []string
		if *configureModule != "" {
			only = []string{*configureModule}
		}
		must.Must(e.Configure(cmd.Context(), loadConfig(), only...))
		path := attributesPath()
		must.Must(attrfile.Write(path, e.HostAttributes()))
		log.Info("Configured", "attributes", path)
	},
}

var configureModule *string

func init() {
	configureModule = configureCmd.Flags().StringP("module", "m", "", "Apply only this separately configurable module")
	rootCmd.AddCommand(configureCmd)
}
