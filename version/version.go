// Package version carries the build metadata stamped in via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Stamped at build time:
//
//	-ldflags "-X github.com/openifc/idlgen/version.Version=1.2.0
//	          -X github.com/openifc/idlgen/version.CommitHash=abc1234"
var (
	// Version is the semantic version when the build is tagged. The
	// configuration's requires check reads it; "dev" carries no
	// semantics and satisfies every constraint.
	Version = "dev"

	// CommitHash identifies the source revision.
	CommitHash = "unknown"
)

// String renders the single line the version subcommand prints.
func String() string {
	return fmt.Sprintf("idlgen %s (commit %s, %s, %s/%s)",
		Version, CommitHash, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
