// Package version holds build identification set via -ldflags.
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

// String formats the build identification for the -version flag.
func String() string {
	return fmt.Sprintf("dotweld %s (%s, built %s)", Version, GitSHA, BuildTime)
}
