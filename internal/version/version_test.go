package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersion(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = oldV, oldC, oldB })

	Version, Commit, BuildDate = "dev", "unknown", "unknown"
	assert.Equal(t, "dev (commit: unknown, "+runtime.Version()+")", GetFullVersion())

	Version, Commit, BuildDate = "1.2.0", "abc123", "2026-10-01"
	assert.Equal(t, "1.2.0 (commit: abc123, built: 2026-10-01, "+runtime.Version()+")", GetFullVersion())
	assert.Equal(t, "1.2.0", GetVersion())
	assert.Equal(t, "abc123", GetCommit())
	assert.Equal(t, "2026-10-01", GetBuildDate())
}
