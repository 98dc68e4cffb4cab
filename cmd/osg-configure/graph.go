// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"github.com/osgconf/osgconf/internal/pkg/must"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the module dependency graph in GraphViz format.",
	Long:  "An edge from A to B means module B reads a value that module A provides, so A is resolved first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		data := must.Must1(newEngine(nil).DependencyGraph())
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		must.Must(err)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
