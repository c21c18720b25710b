package version

import (
	"fmt"
	"runtime"
)

// Project is the name printed in front of every version line.
const Project = "taws-partitions"

//nolint:gochecknoglobals // Overridden through -ldflags "-X".
var (
	// Version is the semantic version of the build.
	Version = "0.1.0-dev"
	// Commit is the short git SHA of the build.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version line logged at startup and printed by the
// version subcommand.
func Full() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s/%s)",
		Project, Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
