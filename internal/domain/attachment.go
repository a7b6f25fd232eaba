package domain

import "time"

// Attachment is an image file linked to a dream. Rows cascade with the
// dream; the stored file is cleaned up by the owning service.
type Attachment struct {
	ID        string    `json:"id"`
	DreamID   string    `json:"dream_id"`
	FilePath  string    `json:"-"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}
