package domain

import "time"

// ReactionType identifies the kind of reaction left on a dream.
type ReactionType string

// ReactionTypeLike is the only reaction the clients currently send.
const ReactionTypeLike ReactionType = "like"

// Valid returns true if the type is a recognized value.
func (t ReactionType) Valid() bool {
	return t == ReactionTypeLike
}

// Reaction is a single user's reaction to a public dream.
// One row per (dream, user, type); toggling removes the row.
type Reaction struct {
	ID        string       `json:"id"`
	DreamID   string       `json:"dream_id"`
	UserID    string       `json:"user_id"`
	Type      ReactionType `json:"type"`
	CreatedAt time.Time    `json:"created_at"`
}
