// Package version holds build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set by ldflags during build, e.g.
// -X github.com/younsl/idlelb/internal/version.version=v0.1.0
var (
	version   = "dev"
	buildDate = "unknown" // RFC3339
	gitCommit = "unknown"
)

// BuildInfo contains version and build details.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information.
func Get() BuildInfo {
	return BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
	}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("idlelb version %s (built: %s, commit: %s, %s)", b.Version, b.BuildDate, b.GitCommit, b.GoVersion)
}
