package version

import (
	"runtime/debug"
	"strings"
)

// Effective returns v when the build stamped a release version into it,
// otherwise the module version or VCS revision recorded by the Go toolchain.
func Effective(v string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fromBuildInfo(v, nil)
	}
	return fromBuildInfo(v, info)
}

func fromBuildInfo(v string, info *debug.BuildInfo) string {
	if v != "" && v != "dev" {
		return v
	}
	if info == nil {
		return v
	}
	// go install github.com/marcus/shelf@vX.Y.Z
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		return mv
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	rev := settings["vcs.revision"]
	if rev == "" {
		return v
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	parts := []string{"devel", rev}
	if settings["vcs.modified"] == "true" {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "+")
}
