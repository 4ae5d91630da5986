package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFromBuildInfo(t *testing.T) {
	tests := []struct {
		name string
		info Info
		bi   debug.BuildInfo
		want Info
	}{
		{
			name: "unset ldflags use build info",
			info: Info{Version: "dev", Commit: "unknown", BuildDate: "unknown"},
			bi: debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.3"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: Info{Version: "1.2.3", Commit: "abc123", BuildDate: "2026-01-02T03:04:05Z", Dirty: true},
		},
		{
			name: "ldflags win",
			info: Info{Version: "2.0.0", Commit: "def456", BuildDate: "2026-05-01T00:00:00Z"},
			bi: debug.BuildInfo{
				Main:     debug.Module{Version: "v1.2.3"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
			},
			want: Info{Version: "2.0.0", Commit: "def456", BuildDate: "2026-05-01T00:00:00Z"},
		},
		{
			name: "devel build keeps dev",
			info: Info{Version: "dev", Commit: "unknown", BuildDate: "unknown"},
			bi:   debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", Commit: "unknown", BuildDate: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info
			fillFromBuildInfo(&got, &tt.bi)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	if got := (Info{Version: "1.0.0"}).String(); got != "1.0.0" {
		t.Errorf("String() = %q", got)
	}
	if got := (Info{Version: "1.0.0", Dirty: true}).String(); got != "1.0.0-dirty" {
		t.Errorf("String() = %q", got)
	}
}

func TestFull(t *testing.T) {
	out := Full()
	for _, want := range []string{"richconv ", "Commit:", "Go version:", "OS/Arch:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
