package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/store"
)

// publicDreamQuery selects public dreams annotated with the author's
// username and like/comment counts. Must match the scan order in
// scanPublicDream.
const publicDreamQuery = `
	SELECT d.id, d.user_id, d.title, d.date, d.content, d.is_public, d.created_at, d.updated_at,
		u.username,
		(SELECT COUNT(*) FROM reactions r WHERE r.dream_id = d.id AND r.type = 'like'),
		(SELECT COUNT(*) FROM comments c WHERE c.dream_id = d.id)
	FROM dreams d
	JOIN users u ON u.id = d.user_id`

// scanPublicDream scans one row of publicDreamQuery.
func scanPublicDream(scanner interface{ Scan(dest ...any) error }) (*domain.PublicDream, error) {
	var pd domain.PublicDream

	var (
		date      sql.NullString
		isPublic  int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&pd.ID,
		&pd.UserID,
		&pd.Title,
		&date,
		&pd.Content,
		&isPublic,
		&createdAt,
		&updatedAt,
		&pd.AuthorUsername,
		&pd.Likes,
		&pd.Comments,
	)
	if err != nil {
		return nil, err
	}

	if date.Valid {
		pd.Date = date.String
	}
	pd.IsPublic = isPublic != 0

	pd.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	pd.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &pd, nil
}

// ListPublicDreams returns all public dreams, newest effective date
// first. An empty tagFilter means no filter; otherwise only dreams
// carrying that exact tag name are returned.
func (s *Store) ListPublicDreams(ctx context.Context, tagFilter string) ([]*domain.PublicDream, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if tagFilter != "" {
		rows, err = s.db.QueryContext(ctx, publicDreamQuery+`
			JOIN dream_tags dt ON dt.dream_id = d.id
			JOIN tags t ON t.id = dt.tag_id
			WHERE d.is_public = 1 AND t.name = ?
			ORDER BY (d.date IS NULL OR d.date = '') ASC, d.date DESC, d.created_at DESC`,
			tagFilter)
	} else {
		rows, err = s.db.QueryContext(ctx, publicDreamQuery+`
			WHERE d.is_public = 1
			ORDER BY (d.date IS NULL OR d.date = '') ASC, d.date DESC, d.created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("query public dreams: %w", err)
	}
	defer rows.Close()

	return s.collectPublicDreams(ctx, rows)
}

// ListPublicDreamsByUser returns one user's public dreams, newest first.
func (s *Store) ListPublicDreamsByUser(ctx context.Context, userID string) ([]*domain.PublicDream, error) {
	rows, err := s.db.QueryContext(ctx, publicDreamQuery+`
		WHERE d.is_public = 1 AND d.user_id = ?
		ORDER BY (d.date IS NULL OR d.date = '') ASC, d.date DESC, d.created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query public dreams: %w", err)
	}
	defer rows.Close()

	return s.collectPublicDreams(ctx, rows)
}

// GetPublicDream retrieves a single public dream with its annotations.
// A private or missing dream returns store.ErrNotFound.
func (s *Store) GetPublicDream(ctx context.Context, dreamID string) (*domain.PublicDream, error) {
	row := s.db.QueryRowContext(ctx, publicDreamQuery+`
		WHERE d.is_public = 1 AND d.id = ?`, dreamID)

	pd, err := scanPublicDream(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	pd.Tags, err = s.GetTagsForDream(ctx, pd.ID)
	if err != nil {
		return nil, err
	}
	return pd, nil
}

// collectPublicDreams drains a public dream result set and attaches tags.
func (s *Store) collectPublicDreams(ctx context.Context, rows *sql.Rows) ([]*domain.PublicDream, error) {
	publicDreams := []*domain.PublicDream{}
	dreams := []*domain.Dream{}
	for rows.Next() {
		pd, err := scanPublicDream(rows)
		if err != nil {
			return nil, err
		}
		publicDreams = append(publicDreams, pd)
		dreams = append(dreams, &pd.Dream)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	if err := s.attachTags(ctx, dreams); err != nil {
		return nil, err
	}
	return publicDreams, nil
}
