package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/id"
)

// ToggleReaction flips a user's reaction on a dream: if the row exists
// it is removed, otherwise it is inserted. The UNIQUE index on
// (dream_id, user_id, type) makes the operation idempotent per state.
// Returns true when the reaction is now present.
func (s *Store) ToggleReaction(ctx context.Context, dreamID, userID string, rt domain.ReactionType) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM reactions
		WHERE dream_id = ? AND user_id = ? AND type = ?`,
		dreamID, userID, string(rt))
	if err != nil {
		return false, fmt.Errorf("delete reaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		// Row existed; the toggle removed it.
		return false, tx.Commit()
	}

	reactionID, err := id.Generate("react")
	if err != nil {
		return false, fmt.Errorf("generate reaction id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reactions (id, dream_id, user_id, type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		reactionID,
		dreamID,
		userID,
		string(rt),
		formatTime(time.Now().UTC()),
	)
	if err != nil {
		return false, fmt.Errorf("insert reaction: %w", err)
	}

	return true, tx.Commit()
}

// CountReactions returns how many reactions of the given type a dream has.
func (s *Store) CountReactions(ctx context.Context, dreamID string, rt domain.ReactionType) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reactions WHERE dream_id = ? AND type = ?`,
		dreamID, string(rt)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reactions: %w", err)
	}
	return count, nil
}

// HasReaction reports whether the user currently has the given reaction
// on the dream.
func (s *Store) HasReaction(ctx context.Context, dreamID, userID string, rt domain.ReactionType) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM reactions WHERE dream_id = ? AND user_id = ? AND type = ?`,
		dreamID, userID, string(rt)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query reaction: %w", err)
	}
	return true, nil
}
