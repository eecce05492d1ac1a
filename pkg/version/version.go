// Package version holds build metadata injected at link time, e.g.
//
//	go build -ldflags "-X github.com/Sumatoshi-tech/devdup/pkg/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata. Defaults apply to development builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion fills Version and Commit from the embedded module build
// info when they were not set at link time.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	if Commit != "none" {
		return
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			Commit = setting.Value
		}
	}
}

// String renders the metadata on one line.
func String() string {
	return fmt.Sprintf("devdup %s (commit: %s, built: %s)", Version, Commit, Date)
}
