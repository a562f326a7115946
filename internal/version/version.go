package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via ldflags. When unset, the VCS stamp embedded by the Go
// toolchain is used instead.
var (
	Commit    = ""
	BuildTime = ""
)

// String returns the version string (commit-hash based, no semver).
func String() string {
	commit, built := Commit, BuildTime
	if commit == "" || built == "" {
		vcsCommit, vcsTime := fromBuildInfo()
		if commit == "" {
			commit = vcsCommit
		}
		if built == "" {
			built = vcsTime
		}
	}
	return fmt.Sprintf("vintagevoice dev (commit: %s, built: %s)", short(orUnknown(commit)), orUnknown(built))
}

func fromBuildInfo() (commit, built string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			built = s.Value
		}
	}
	return commit, built
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
