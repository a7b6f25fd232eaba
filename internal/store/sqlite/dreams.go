package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/store"
)

// dreamColumns is the ordered list of columns selected in dream queries.
// Must match the scan order in scanDream.
const dreamColumns = `id, user_id, title, date, content, is_public, created_at, updated_at`

// dreamOrder sorts by effective date: dated entries first, newest date
// first, creation time as the tiebreaker within a day. Entries without
// a date sort after all dated ones.
const dreamOrder = `(date IS NULL OR date = '') ASC, date DESC, created_at DESC`

// scanDream scans a sql.Row (or sql.Rows via its Scan method) into a domain.Dream.
// Tags are left nil; callers attach them separately.
func scanDream(scanner interface{ Scan(dest ...any) error }) (*domain.Dream, error) {
	var d domain.Dream

	var (
		date      sql.NullString
		isPublic  int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&d.ID,
		&d.UserID,
		&d.Title,
		&date,
		&d.Content,
		&isPublic,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if date.Valid {
		d.Date = date.String
	}
	d.IsPublic = isPublic != 0

	d.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// CreateDream inserts a new dream. Tag associations are handled separately.
func (s *Store) CreateDream(ctx context.Context, d *domain.Dream) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dreams (id, user_id, title, date, content, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.UserID,
		d.Title,
		nullString(d.Date),
		d.Content,
		boolToInt(d.IsPublic),
		formatTime(d.CreatedAt),
		formatTime(d.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert dream: %w", err)
	}
	return nil
}

// GetDream retrieves a dream by ID regardless of owner or visibility.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetDream(ctx context.Context, dreamID string) (*domain.Dream, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+dreamColumns+` FROM dreams WHERE id = ?`, dreamID)

	d, err := scanDream(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDreamForOwner retrieves a dream only if it belongs to the given owner.
// A dream owned by someone else is indistinguishable from a missing one.
func (s *Store) GetDreamForOwner(ctx context.Context, dreamID, ownerID string) (*domain.Dream, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+dreamColumns+` FROM dreams WHERE id = ? AND user_id = ?`, dreamID, ownerID)

	d, err := scanDream(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d.Tags, err = s.GetTagsForDream(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDream persists scalar fields for a dream owned by ownerID.
// Returns store.ErrNotFound when no such dream exists for that owner.
func (s *Store) UpdateDream(ctx context.Context, d *domain.Dream) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE dreams
		SET title = ?, date = ?, content = ?, is_public = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		d.Title,
		nullString(d.Date),
		d.Content,
		boolToInt(d.IsPublic),
		formatTime(d.UpdatedAt),
		d.ID,
		d.UserID,
	)
	if err != nil {
		return fmt.Errorf("update dream: %w", err)
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

// DeleteDream removes a dream owned by ownerID.
// Association rows cascade, then tags left without any dream are swept
// in the same transaction. A failed sweep is logged and skipped.
func (s *Store) DeleteDream(ctx context.Context, dreamID, ownerID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM dreams WHERE id = ? AND user_id = ?`, dreamID, ownerID)
	if err != nil {
		return fmt.Errorf("delete dream: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	if n, err := deleteOrphanTagsTx(ctx, tx); err != nil {
		s.logger.Warn("orphan tag sweep failed", "error", err)
	} else if n > 0 {
		s.logger.Debug("reclaimed orphan tags", "count", n)
	}

	return tx.Commit()
}

// ListDreams returns the owner's dreams ordered by effective date
// descending, each with its tag set. An empty tagFilter means no filter;
// otherwise only dreams carrying that exact tag name are returned.
func (s *Store) ListDreams(ctx context.Context, ownerID, tagFilter string) ([]*domain.Dream, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if tagFilter != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT d.id, d.user_id, d.title, d.date, d.content, d.is_public, d.created_at, d.updated_at
			FROM dreams d
			JOIN dream_tags dt ON dt.dream_id = d.id
			JOIN tags t ON t.id = dt.tag_id
			WHERE d.user_id = ? AND t.name = ?
			ORDER BY (d.date IS NULL OR d.date = '') ASC, d.date DESC, d.created_at DESC`,
			ownerID, tagFilter)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+dreamColumns+` FROM dreams WHERE user_id = ? ORDER BY `+dreamOrder,
			ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("query dreams: %w", err)
	}
	defer rows.Close()

	dreams, err := collectDreams(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, dreams); err != nil {
		return nil, err
	}
	return dreams, nil
}

// CountDreamsForOwner returns the owner's total and public dream counts.
func (s *Store) CountDreamsForOwner(ctx context.Context, ownerID string) (total, public int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(is_public), 0)
		FROM dreams WHERE user_id = ?`, ownerID).Scan(&total, &public)
	if err != nil {
		return 0, 0, fmt.Errorf("count dreams: %w", err)
	}
	return total, public, nil
}

// ListAllDreams returns every dream with its tag set, for index rebuilds.
func (s *Store) ListAllDreams(ctx context.Context) ([]*domain.Dream, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+dreamColumns+` FROM dreams ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query dreams: %w", err)
	}
	defer rows.Close()

	dreams, err := collectDreams(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, dreams); err != nil {
		return nil, err
	}
	return dreams, nil
}

// collectDreams drains a dream result set.
func collectDreams(rows *sql.Rows) ([]*domain.Dream, error) {
	dreams := []*domain.Dream{}
	for rows.Next() {
		d, err := scanDream(rows)
		if err != nil {
			return nil, err
		}
		dreams = append(dreams, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return dreams, nil
}

// attachTags populates Tags for each dream with one batched query.
func (s *Store) attachTags(ctx context.Context, dreams []*domain.Dream) error {
	if len(dreams) == 0 {
		return nil
	}

	placeholders := make([]string, len(dreams))
	args := make([]any, len(dreams))
	byID := make(map[string]*domain.Dream, len(dreams))
	for i, d := range dreams {
		placeholders[i] = "?"
		args[i] = d.ID
		byID[d.ID] = d
		d.Tags = []string{}
	}

	query := `
		SELECT dt.dream_id, t.name
		FROM dream_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.dream_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY t.name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query dream tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dreamID, name string
		if err := rows.Scan(&dreamID, &name); err != nil {
			return fmt.Errorf("scan dream tag: %w", err)
		}
		if d, ok := byID[dreamID]; ok {
			d.Tags = append(d.Tags, name)
		}
	}
	return rows.Err()
}
