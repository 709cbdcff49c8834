// Package version reports the build version of gs1decode.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version, commit and build date. Values not set through
// ldflags are taken from the embedded build info when `go install` recorded
// them.
func Info() (string, string, string) {
	ver, commit, date := Version, GitCommit, BuildDate

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ver, commit, date
	}
	if ver == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		ver = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "unknown" && s.Value != "" {
				commit = s.Value
			}
		case "vcs.time":
			if date == "unknown" && s.Value != "" {
				date = s.Value
			}
		}
	}
	return ver, commit, date
}

// String returns a one-line description such as "v1.2.0 (abc1234, 2026-01-02)".
func String() string {
	ver, commit, date := Info()
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", ver, commit, date)
}
