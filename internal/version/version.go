package version

import (
	"fmt"
	"runtime"
	"time"
)

// Set at build time with -ldflags "-X .../internal/version.Version=v1.2.0 ...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)

// String is the one-line build description.
func String() string {
	return fmt.Sprintf("navgrid %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
