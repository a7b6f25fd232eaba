package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/store"
)

// CreateAttachment records a file attached to a dream. Rows cascade with
// the dream; the file on disk is the caller's problem.
func (s *Store) CreateAttachment(ctx context.Context, a *domain.Attachment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (id, dream_id, file_path, mime_type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID,
		a.DreamID,
		a.FilePath,
		a.MimeType,
		formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// ListAttachmentsForDream returns a dream's attachments oldest first.
func (s *Store) ListAttachmentsForDream(ctx context.Context, dreamID string) ([]*domain.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dream_id, file_path, mime_type, created_at
		FROM attachments
		WHERE dream_id = ?
		ORDER BY created_at ASC`, dreamID)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	attachments := []*domain.Attachment{}
	for rows.Next() {
		var (
			a         domain.Attachment
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.DreamID, &a.FilePath, &a.MimeType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		a.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return attachments, nil
}

// GetAttachment retrieves an attachment by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetAttachment(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	var (
		a         domain.Attachment
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, dream_id, file_path, mime_type, created_at
		FROM attachments WHERE id = ?`, attachmentID).
		Scan(&a.ID, &a.DreamID, &a.FilePath, &a.MimeType, &createdAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAttachment removes an attachment row.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteAttachment(ctx context.Context, attachmentID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, attachmentID)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
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
