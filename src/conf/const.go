// Package conf contains the constants that are used across packages for
// configuring versions and checker limits.
package conf

import (
	"fmt"
	"time"
)

const (
	// VERSION is the version of the typefence application.
	VERSION = "typefence 0.1.0"
	// VERSIONMAJORN is the major version.
	VERSIONMAJORN = 0
	// VERSIONMINORN is the minor version.
	VERSIONMINORN = 1
	// VERSIONPATCHN is the patch version.
	VERSIONPATCHN = 0
	// CONFIGFILE is the default instrumentation config filename.
	CONFIGFILE = ".typefence.yml"
	// TRACEPATTERN is the default strftime pattern for trace timestamps.
	TRACEPATTERN = "%H:%M:%S"
	// MAXDEPTH is the max nesting that the checker will descend into a value.
	MAXDEPTH = 512
)

// FullVersion returns the version and copyright.
func FullVersion() string {
	return fmt.Sprintf("%v Copyright (C) %v", VERSION, time.Now().Year())
}

// Copyright is the copyright to be written out in the CLI.
func Copyright() string {
	return fmt.Sprintf("Copyright (C) %v", time.Now().Year())
}
