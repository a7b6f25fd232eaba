package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/store"
)

// CreateComment inserts a new comment on a dream.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, dream_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID,
		c.DreamID,
		c.UserID,
		c.Content,
		formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.dream_id, c.user_id, c.content, c.created_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = ?`, commentID)

	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCommentsForDream returns a dream's comments oldest first, each
// annotated with the author's username.
func (s *Store) ListCommentsForDream(ctx context.Context, dreamID string) ([]*domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.dream_id, c.user_id, c.content, c.created_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.dream_id = ?
		ORDER BY c.created_at ASC`, dreamID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return comments, nil
}

// DeleteComment removes a comment by ID.
// Returns store.ErrNotFound if it does not exist. Ownership checks are
// the caller's responsibility; use GetComment first.
func (s *Store) DeleteComment(ctx context.Context, commentID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// scanComment scans a joined comment row.
func scanComment(scanner interface{ Scan(dest ...any) error }) (*domain.Comment, error) {
	var c domain.Comment

	var createdAt string

	err := scanner.Scan(
		&c.ID,
		&c.DreamID,
		&c.UserID,
		&c.Content,
		&createdAt,
		&c.AuthorUsername,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}
