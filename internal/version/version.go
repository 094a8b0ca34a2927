// Package version carries build identification, set at link time via
// -ldflags "-X github.com/fellrank-data/race.report/internal/version.Version=...".
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String renders the full build identification line.
func String() string {
	return fmt.Sprintf("race-report %s (%s, built %s)", Version, GitSHA, BuildTime)
}
