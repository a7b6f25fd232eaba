package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/store"
)

// DreamActivity returns the date fields of every dream in scope.
// The date column is free text, so window filtering and day bucketing
// happen in the caller, which can fall back to created_at when the
// text doesn't parse.
func (s *Store) DreamActivity(ctx context.Context, scope domain.StatsScope) ([]store.DreamActivityRow, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if scope.Public() {
		rows, err = s.db.QueryContext(ctx,
			`SELECT date, created_at FROM dreams WHERE is_public = 1`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT date, created_at FROM dreams WHERE user_id = ?`, scope.OwnerID)
	}
	if err != nil {
		return nil, fmt.Errorf("query dream activity: %w", err)
	}
	defer rows.Close()

	out := []store.DreamActivityRow{}
	for rows.Next() {
		var (
			date      sql.NullString
			createdAt string
			row       store.DreamActivityRow
		)
		if err := rows.Scan(&date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan dream activity: %w", err)
		}
		if date.Valid {
			row.Date = date.String
		}
		row.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return out, nil
}

// TagActivity returns one row per dream-tag association in scope, each
// carrying the dream's date fields for window filtering by the caller.
func (s *Store) TagActivity(ctx context.Context, scope domain.StatsScope) ([]store.TagActivityRow, error) {
	const base = `
		SELECT t.name, d.date, d.created_at
		FROM dream_tags dt
		JOIN tags t ON t.id = dt.tag_id
		JOIN dreams d ON d.id = dt.dream_id`

	var (
		rows *sql.Rows
		err  error
	)

	if scope.Public() {
		rows, err = s.db.QueryContext(ctx, base+` WHERE d.is_public = 1`)
	} else {
		rows, err = s.db.QueryContext(ctx, base+` WHERE d.user_id = ?`, scope.OwnerID)
	}
	if err != nil {
		return nil, fmt.Errorf("query tag activity: %w", err)
	}
	defer rows.Close()

	out := []store.TagActivityRow{}
	for rows.Next() {
		var (
			date      sql.NullString
			createdAt string
			row       store.TagActivityRow
		)
		if err := rows.Scan(&row.TagName, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tag activity: %w", err)
		}
		if date.Valid {
			row.Date = date.String
		}
		row.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return out, nil
}
