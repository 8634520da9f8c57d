// Package buildinfo reports what binary is running, for --version and the
// log file header.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

func setting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Version returns the module version, or "dev" plus the short VCS revision
// for local builds.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version != "" && version != "(devel)" {
		return version
	}
	rev := setting(info, "vcs.revision")
	if rev == "" {
		return "dev"
	}
	rev = rev[:min(len(rev), 12)]
	if setting(info, "vcs.modified") == "true" {
		rev += "-dirty"
	}
	return "dev-" + rev
}

// Tags returns the build tags recorded at compile time, e.g.
// "nosyntaxhighlight".
func Tags() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	return strings.TrimSpace(setting(info, "-tags"))
}

// VersionWithTags returns the version string and tags if present.
func VersionWithTags() string {
	version := Version()
	tags := Tags()
	if tags == "" {
		return version
	}
	return fmt.Sprintf("%s (tags: %s)", version, tags)
}
