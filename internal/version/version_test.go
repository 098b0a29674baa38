package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()
	require.NotEmpty(t, info.GoVersion)
	require.NotEmpty(t, info.Version)
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "deadbeef"},
			{Key: "vcs.time", Value: "2026-03-02T10:00:00Z"},
		},
		Deps: []*debug.Module{
			{Path: "cuelang.org/go", Version: "v0.15.4"},
			{Path: "modernc.org/sqlite", Version: "v1.29.1", Replace: &debug.Module{Version: "v1.29.2"}},
			{Path: "github.com/spf13/cobra", Version: "v1.10.2"},
		},
	}
	info := Info{Version: "v0.0.0-dev", GitCommit: "unknown", BuildDate: "unknown"}
	fromBuildInfo(&info, bi)

	assert.Equal(t, "v0.4.1", info.Version)
	assert.Equal(t, "deadbeef", info.GitCommit)
	assert.Equal(t, "2026-03-02T10:00:00Z", info.BuildDate)
	assert.Equal(t, map[string]string{
		"cuelang.org/go":     "v0.15.4",
		"modernc.org/sqlite": "v1.29.2",
	}, info.Deps)
}

func TestFromBuildInfoKeepsLdflags(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "deadbeef"}},
	}
	info := Info{Version: "v1.2.0", GitCommit: "abc123", BuildDate: "unknown"}
	fromBuildInfo(&info, bi)

	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, "abc123", info.GitCommit)
	assert.Empty(t, info.Deps)
}

func TestInfoString(t *testing.T) {
	str := Info{
		Version:   "v1.0.0",
		GitCommit: "abc123",
		BuildDate: "2026-01-29",
		GoVersion: "go1.25",
		Deps:      map[string]string{"cuelang.org/go": "v0.15.4"},
	}.String()

	assert.Contains(t, str, "r2x v1.0.0")
	assert.Contains(t, str, "abc123")
	assert.Contains(t, str, "go1.25")
	assert.Contains(t, str, "cuelang.org/go v0.15.4")
	assert.NotContains(t, str, "modernc.org/sqlite")
}
