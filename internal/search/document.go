// Package search provides full-text search over dreams using Bleve.
package search

import (
	"github.com/somniaapp/somnia-server/internal/domain"
)

// visibility values stored in the index.
const (
	visibilityPublic  = "public"
	visibilityPrivate = "private"
)

// Document is the indexed representation of a dream.
type Document struct {
	ID         string   `json:"id"`
	OwnerID    string   `json:"owner_id"`
	Title      string   `json:"title,omitempty"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
	Visibility string   `json:"visibility"`
	CreatedAt  int64    `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve defaults to Go struct field names, but the mapping uses
// lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"content":    d.Content,
		"visibility": d.Visibility,
		"created_at": d.CreatedAt,
	}

	if d.Title != "" {
		m["title"] = d.Title
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// DreamToDocument converts a domain Dream to an indexable Document.
func DreamToDocument(dream *domain.Dream) *Document {
	visibility := visibilityPrivate
	if dream.IsPublic {
		visibility = visibilityPublic
	}

	return &Document{
		ID:         dream.ID,
		OwnerID:    dream.UserID,
		Title:      dream.Title,
		Content:    dream.Content,
		Tags:       dream.Tags,
		Visibility: visibility,
		CreatedAt:  dream.CreatedAt.UnixMilli(),
	}
}
