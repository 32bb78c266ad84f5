// Package version holds build metadata stamped in at link time.
package version

import "fmt"

// Set via -ldflags at build time, e.g.
//
//	go build -ldflags "-X goleet/internal/version.Version=v1.4.0"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a one-line human-readable version string.
func Info() string {
	return fmt.Sprintf("goleet %s (commit: %s, built: %s)", Version, Commit, Date)
}
