// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// osg-configure checks and applies the site configuration of a grid gateway.
//
// The configuration is a directory of INI files, one section per module.
// Run "osg-configure verify" after editing, then "osg-configure configure" as root.
package main

import (
	"fmt"
	"os"

	"github.com/osgconf/osgconf/internal/pkg/must"
)

func main() {
	// Code in this package panics with an error to exit.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, r)
			if *panicOnErr {
				panic(r)
			}
			os.Exit(1)
		}
		os.Exit(0)
	}()
	must.Must(rootCmd.Execute())
}
