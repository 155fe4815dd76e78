// Package version reports the mdembed build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// ldflags経由でリリースビルド時に設定される
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

// GetVersion returns the release version. For go install builds without
// ldflags it falls back to the VCS metadata the toolchain embeds.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var revision, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if revision == "" {
		return Version
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if modified == "true" {
		revision += "+dirty"
	}
	return revision
}

// GetBuildInfo returns the multi-line report printed by the version command.
func GetBuildInfo() string {
	commit := GitCommit
	date := BuildDate
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if date == "" {
					date = s.Value
				}
			}
		}
	}

	line := "mdembed " + GetVersion()
	if len(commit) >= 7 {
		line += fmt.Sprintf(" (commit: %s)", commit[:7])
	}
	if date == "" {
		date = "unknown"
	}

	return fmt.Sprintf(`%s
Built with: %s
Build date: %s`, line, runtime.Version(), date)
}
