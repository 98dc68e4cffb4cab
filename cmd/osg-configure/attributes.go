// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"encoding/json"

	"github.com/osgconf/osgconf/internal/pkg/enumflag"
	"github.com/osgconf/osgconf/internal/pkg/must"
	"github.com/osgconf/osgconf/pkg/attrfile"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "Print the host attributes the configuration produces.",
	Long: `Parse the configuration and print the attributes that configure would write
to the host attribute file. Nothing is validated or applied.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		e := newEngine(nil)
		must.Must(e.Parse(loadConfig()))
		attrs := e.HostAttributes()
		out := cmd.OutOrStdout()
		var data []byte
		switch attributesOutput.String() {
		case "json":
			data = must.Must1(json.MarshalIndent(attrs.Strings(), "", "  "))
			data = append(data, '\n')
		case "yaml":
			data = must.Must1(yaml.Marshal(attrs.Strings()))
		default:
			data = must.Must1(attrfile.Format(attrs))
		}
		_, err := out.Write(data)
		must.Must(err)
	},
}

var attributesOutput = enumflag.New("shell", []string{"shell", "yaml", "json"})

func init() {
	attributesCmd.Flags().VarP(attributesOutput, "output", "o", attributesOutput.DocString("Output format"))
	rootCmd.AddCommand(attributesCmd)
}
