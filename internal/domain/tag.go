package domain

import "time"

// Tag represents a label attached to dreams. The namespace is global:
// any user's edit can create a tag, and tags with no remaining
// associations are reclaimed eagerly.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TagUsage is a tag annotated with how many dreams currently carry it.
type TagUsage struct {
	Tag
	UsageCount int `json:"usage_count"`
}

// DreamTag represents the many-to-many relationship between dreams and tags.
type DreamTag struct {
	DreamID string `json:"dream_id"`
	TagID   string `json:"tag_id"`
}
