package store

import "time"

// DreamActivityRow is the minimal slice of a dream needed to bucket it
// into a calendar day. Date is the raw free-text field; callers resolve
// the effective day themselves.
type DreamActivityRow struct {
	Date      string
	CreatedAt time.Time
}

// TagActivityRow is one dream-tag association together with the dream's
// date fields, used for tag distribution reports.
type TagActivityRow struct {
	TagName   string
	Date      string
	CreatedAt time.Time
}
