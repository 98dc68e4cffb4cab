// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"fmt"

	"github.com/osgconf/osgconf/internal/pkg/must"
	"github.com/osgconf/osgconf/pkg/attrfile"
	"github.com/osgconf/osgconf/pkg/configfile"
	"github.com/osgconf/osgconf/pkg/engine"
	"github.com/osgconf/osgconf/pkg/osgconf"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [flags] OUTPUT",
	Short: "Write the configuration as a single canonical INI file.",
	Long: `Serialize the attributes of the configuration to OUTPUT, one section per module.
Sections with enabled = ignore are kept as they are. OUTPUT "-" writes to standard output.
With --from-attributes the attributes are read from a host attribute file instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output := args[0]
		e := newEngine(nil)
		var pairs osgconf.Attributes
		if *normalizeFrom != "" {
			cfg, err := configfile.Load(afero.NewOsFs(), *configDir)
			if configfile.Missing(err) {
				log.V(1).Info("No configuration, all sections are written as enabled", "error", err)
				cfg, err = configfile.Parse(*configDir, nil)
			}
			must.Must(err)
			must.Must(e.Parse(cfg))
			pairs = must.Must1(attrfile.ReadFile(cmd.Context(), afero.NewOsFs(), *normalizeFrom))
		} else {
			must.Must(e.Parse(loadConfig()))
			pairs = e.Attributes()
		}
		data := must.Must1(e.Normalize(pairs))
		switch {
		case *normalizeDiff:
			fmt.Fprint(cmd.OutOrStdout(), must.Must1(engine.Diff(output, data)))
		case output == "-":
			_, err := cmd.OutOrStdout().Write(data)
			must.Must(err)
		default:
			must.Must(engine.WriteFile(output, data))
			log.Info("Normalized configuration written", "file", output)
		}
	},
}

var (
	normalizeFrom *string
	normalizeDiff *bool
)

func init() {
	normalizeFrom = normalizeCmd.Flags().String("from-attributes", "", "Read attributes from this host attribute file")
	normalizeDiff = normalizeCmd.Flags().Bool("diff", false, "Print a unified diff from OUTPUT to the normalized configuration instead of writing it")
	rootCmd.AddCommand(normalizeCmd)
}
