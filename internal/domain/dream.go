package domain

import (
	"strings"
	"time"
)

// Dream represents a single journal entry.
// Date is free text entered by the user; when its leading characters parse
// as YYYY-MM-DD that date drives ordering and statistics, otherwise
// CreatedAt stands in.
type Dream struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	Date      string    `json:"date,omitempty"`
	Content   string    `json:"content"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []string  `json:"tags"`
}

// PublicDream is a dream as seen on the public feed, annotated with
// its author and social counts.
type PublicDream struct {
	Dream
	AuthorUsername string `json:"author_username"`
	Likes          int    `json:"likes"`
	Comments       int    `json:"comments"`
}

// Touch updates the UpdatedAt timestamp.
func (d *Dream) Touch() {
	d.UpdatedAt = time.Now()
}

// EffectiveDate returns the calendar day a dream belongs to.
// The explicit date wins when it starts with a parseable YYYY-MM-DD,
// otherwise the creation timestamp's local day is used.
func (d *Dream) EffectiveDate() time.Time {
	if day, ok := ParseEntryDate(d.Date); ok {
		return day
	}
	y, m, dd := d.CreatedAt.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.Local)
}

// ParseEntryDate extracts a calendar day from a free-text date field.
// Only the leading ten characters are considered so inputs like
// "2026-03-14, early morning" still bucket correctly.
func ParseEntryDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", s[:10], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
