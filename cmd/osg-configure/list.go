// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/osgconf/osgconf/internal/pkg/enumflag"
	"github.com/osgconf/osgconf/internal/pkg/must"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

type moduleInfo struct {
	Name     string   `json:"name"`
	Sections []string `json:"sections"`
	State    string   `json:"state"`
	Separate bool     `json:"separatelyConfigurable"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules and their state in the current configuration.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		e := newEngine(nil)
		must.Must(e.Parse(loadConfig()))
		var infos []moduleInfo
		for _, m := range e.Registry().All() {
			infos = append(infos, moduleInfo{
				Name:     m.Name(),
				Sections: m.Sections(),
				State:    string(m.State()),
				Separate: m.SeparatelyConfigurable(),
			})
		}
		out := cmd.OutOrStdout()
		switch listOutput.String() {
		case "yaml":
			_, err := out.Write(must.Must1(yaml.Marshal(infos)))
			must.Must(err)
		default:
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "MODULE\tSECTION\tSTATE\tSEPARATE")
			for _, i := range infos {
				fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", i.Name, strings.Join(i.Sections, ","), i.State, i.Separate)
			}
		}
	},
}

var listOutput = enumflag.New("table", []string{"table", "yaml"})

func init() {
	listCmd.Flags().VarP(listOutput, "output", "o", listOutput.DocString("Output format"))
	rootCmd.AddCommand(listCmd)
}
