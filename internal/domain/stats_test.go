package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStatsRange(t *testing.T) {
	assert.Equal(t, StatsRange7d, ParseStatsRange("7d"))
	assert.Equal(t, StatsRange30d, ParseStatsRange("30d"))
	assert.Equal(t, StatsRange1y, ParseStatsRange("1y"))

	// Unknown values fall back to the weekly window.
	assert.Equal(t, StatsRange7d, ParseStatsRange(""))
	assert.Equal(t, StatsRange7d, ParseStatsRange("90d"))
	assert.Equal(t, StatsRange7d, ParseStatsRange("all"))
}

func TestStatsRangeBounds(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 4, 5, 0, time.Local)

	start, end := StatsRange7d.Bounds(now)
	assert.Equal(t, "2026-08-30", end.Format("2006-01-02"))
	assert.Equal(t, "2026-08-24", start.Format("2006-01-02"))

	start, end = StatsRange30d.Bounds(now)
	assert.Equal(t, "2026-08-01", start.Format("2006-01-02"))
	assert.Equal(t, "2026-08-30", end.Format("2006-01-02"))

	start, _ = StatsRange1y.Bounds(now)
	assert.Equal(t, 365, StatsRange1y.Days())
	assert.Equal(t, "2025-08-31", start.Format("2006-01-02"))
}

func TestStatsScope(t *testing.T) {
	assert.True(t, StatsScope{}.Public())
	assert.False(t, StatsScope{OwnerID: "user-abc"}.Public())
}
