// Package consts houses some constants needed across remap
package consts

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version contains the current semantic version of remap.
const Version = "0.3.0"

// Name of the binary, used in the version string and in the default config path.
const Name = "remap"

// commit is set with -ldflags "-X github.com/liuxd6825/remap/lib/consts.commit=..." on release
// builds. Local builds fall back to the VCS information embedded by the go tool.
var commit string //nolint:gochecknoglobals

// Commit returns the commit remap was built from, if known, with a "-dirty" suffix when the
// working tree had local modifications.
func Commit() string {
	if commit != "" {
		return commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(revision) > 10 {
		revision = revision[:10]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}

// FullVersion returns the maximally full version and build information for
// the currently running remap executable.
func FullVersion() string {
	goVersionArch := fmt.Sprintf("%s, %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if c := Commit(); c != "" {
		return fmt.Sprintf("%s (commit/%s, %s)", Version, c, goVersionArch)
	}
	return fmt.Sprintf("%s (%s)", Version, goVersionArch)
}

// VersionDetails returns the structured details about the version.
func VersionDetails() map[string]string {
	details := map[string]string{
		"version":    "v" + Version,
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
		"go_version": strings.TrimPrefix(runtime.Version(), "go"),
	}
	if c := Commit(); c != "" {
		details["commit"] = c
	}
	return details
}
