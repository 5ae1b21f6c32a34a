// Package version holds build identity, overridden at link time via
// -ldflags "-X github.com/banshee-data/volgrid/internal/version.Version=...".
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

// String returns the one-line form used in logs and the -version flag.
func String() string {
	return fmt.Sprintf("volgrid %s (%s, built %s)", Version, GitSHA, BuildTime)
}
