package domain

import "time"

// StatsRange represents a lookback window for statistics queries.
type StatsRange string

// StatsRange constants for lookback windows.
const (
	StatsRange7d  StatsRange = "7d"
	StatsRange30d StatsRange = "30d"
	StatsRange1y  StatsRange = "1y"
)

// ParseStatsRange maps a raw query value to a range.
// Unrecognized values fall back to the 7 day window rather than erroring,
// so a stale client never breaks the stats page.
func ParseStatsRange(s string) StatsRange {
	switch StatsRange(s) {
	case StatsRange30d:
		return StatsRange30d
	case StatsRange1y:
		return StatsRange1y
	default:
		return StatsRange7d
	}
}

// Days returns the number of calendar days in the window.
func (r StatsRange) Days() int {
	switch r {
	case StatsRange30d:
		return 30
	case StatsRange1y:
		return 365
	default:
		return 7
	}
}

// Bounds returns the inclusive [start, end] day range relative to now.
// End is the start of the current local day; start is end minus N-1 days,
// so the window always spans exactly N calendar days including today.
func (r StatsRange) Bounds(now time.Time) (start, end time.Time) {
	year, month, day := now.Date()
	end = time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	start = end.AddDate(0, 0, -(r.Days() - 1))
	return start, end
}

// StatsScope selects whose dreams feed the report.
// OwnerID set means that user's entire journal; empty means all public dreams.
type StatsScope struct {
	OwnerID string
}

// Public returns true when the scope covers the public feed.
func (s StatsScope) Public() bool {
	return s.OwnerID == ""
}

// ActivityPoint is one day in the frequency series.
type ActivityPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// TagCount is one entry in the tag distribution.
type TagCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// StatsReport is a complete date-bucketed activity report.
type StatsReport struct {
	Scope     string          `json:"scope"` // "self" or "public"
	Range     StatsRange      `json:"range"`
	Start     string          `json:"start"` // YYYY-MM-DD
	End       string          `json:"end"`   // YYYY-MM-DD
	Frequency []ActivityPoint `json:"frequency"`
	Tags      []TagCount      `json:"tags"`
}
