// Package runtime holds build metadata of the pio-helpers binary itself.
//
// The variables are stamped by the tool's own ldflags format:
//
//	go build -ldflags "$(pio-helpers git-version --format ldflags \
//	  --package github.com/platinenmacher/pio-helpers/internal/runtime)"
package runtime

import "fmt"

var (
	// Version is the git describe output (set via -ldflags)
	Version = "0.0.0-dev"

	// BuildTime is the local build timestamp (set via -ldflags)
	BuildTime = "unknown"
)

// VersionString returns the formatted version string for display.
func VersionString() string {
	return fmt.Sprintf("pio-helpers version %s built %s", Version, BuildTime)
}
