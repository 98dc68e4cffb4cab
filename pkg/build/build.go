// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// package build contains build information for the osgconf module.
package build

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var version string

// Version of osg-configure, as printed by "osg-configure version".
var Version = strings.TrimSpace(version)
