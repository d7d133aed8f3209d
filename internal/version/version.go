// Package version reports the build identity of the hugoify binary.
package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/hugoify/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, also set through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is the line printed by --version.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return "hugoify " + Version
	}
	return fmt.Sprintf("hugoify %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
