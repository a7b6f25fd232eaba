package domain

import "time"

// Comment is a user's remark on a public dream.
type Comment struct {
	ID        string    `json:"id"`
	DreamID   string    `json:"dream_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// AuthorUsername is populated on reads for display.
	AuthorUsername string `json:"author_username,omitempty"`
}
