// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"fmt"

	"github.com/osgconf/osgconf/internal/pkg/must"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the configuration without changing the host.",
	Long: `Lint, parse and validate the configuration files.
Every problem found is reported, the exit status is 1 if there are any.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		e := newEngine(nil)
		must.Must(e.Verify(loadConfig()))
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
