package version

import (
	"runtime/debug"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	vcs := func(rev, modified string) *debug.BuildInfo {
		info := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
		info.Settings = []debug.BuildSetting{
			{Key: "vcs.revision", Value: rev},
			{Key: "vcs.modified", Value: modified},
		}
		return info
	}

	tests := []struct {
		name string
		v    string
		info *debug.BuildInfo
		want string
	}{
		{"stamped", "v1.2.3", vcs("abc", "false"), "v1.2.3"},
		{"no build info", "dev", nil, "dev"},
		{"go install", "dev", &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, "v0.4.0"},
		{"clean checkout", "dev", vcs("0123456789abcdef", "false"), "devel+0123456789ab"},
		{"dirty checkout", "", vcs("abc123", "true"), "devel+abc123+dirty"},
		{"no vcs", "dev", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromBuildInfo(tt.v, tt.info); got != tt.want {
				t.Errorf("fromBuildInfo(%q) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}
