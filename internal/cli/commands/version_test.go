package commands

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	b := BuildInfo{Version: "1.2.0", Commit: "unknown", Date: "unknown"}

	rep := report(b, nil)
	assert.Equal(t, "1.2.0", rep.Version)
	assert.Equal(t, "unknown", rep.Commit)
	assert.NotEmpty(t, rep.Go)
	assert.Empty(t, rep.Drivers)

	rep = report(b, &debug.BuildInfo{
		GoVersion: "go1.24.11",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T00:00:00Z"},
		},
		Deps: []*debug.Module{
			{Path: "github.com/jackc/pgx/v5", Version: "v5.7.6"},
			{Path: "github.com/spf13/cobra", Version: "v1.10.2"},
			{Path: "modernc.org/sqlite", Version: "v1.40.0", Replace: &debug.Module{Path: "modernc.org/sqlite", Version: "v1.42.2"}},
		},
	})
	assert.Equal(t, "abc123", rep.Commit)
	assert.Equal(t, "2026-10-01T00:00:00Z", rep.Date)
	assert.Equal(t, "go1.24.11", rep.Go)
	assert.Equal(t, map[string]string{
		"github.com/jackc/pgx/v5": "v5.7.6",
		"modernc.org/sqlite":      "v1.42.2",
	}, rep.Drivers)

	stamped := report(BuildInfo{Version: "1.2.0", Commit: "deadbeef", Date: "2026-09-30"},
		&debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}}})
	assert.Equal(t, "deadbeef", stamped.Commit, "link-time stamp wins")
}
