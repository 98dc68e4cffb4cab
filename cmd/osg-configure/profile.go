// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

package main

import (
	"maps"
	"os"
	"slices"

	"github.com/osgconf/osgconf/internal/pkg/enumflag"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

const (
	profileEnv     = "OSGCONF_PROFILE"
	profilePathEnv = "OSGCONF_PROFILE_PATH"
)

var (
	profileTypes = map[string]func(*profile.Profile){
		"cpu":   profile.CPUProfile,
		"mem":   profile.MemProfile,
		"block": profile.BlockProfile,
		"trace": profile.TraceProfile,
	}
	profileTypeFlag = enumflag.New(os.Getenv(profileEnv), slices.Collect(maps.Keys(profileTypes)))
	profilePathFlag = rootCmd.PersistentFlags().String("profile-path", os.Getenv(profilePathEnv), "Output path for profile")
	profileStop     interface{ Stop() }
)

func init() {
	rootCmd.PersistentFlags().Var(profileTypeFlag, "profile", profileTypeFlag.DocString("Enable profiling"))
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) { profileStop = startProfile() }
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) { profileStop.Stop() }
}

type noopStop struct{}

func (noopStop) Stop() {}

func startProfile() interface{ Stop() } {
	if opt, ok := profileTypes[profileTypeFlag.String()]; ok {
		if *profilePathFlag == "" {
			*profilePathFlag = "."
		}
		return profile.Start(profile.ProfilePath(*profilePathFlag), opt, profile.Quiet)
	}
	return noopStop{}
}
