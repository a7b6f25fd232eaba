package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/id"
	"github.com/somniaapp/somnia-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, name, created_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var createdAt string

	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on a duplicate name.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, created_at)
		VALUES (?, ?, ?)`,
		t.ID,
		t.Name,
		formatTime(t.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("tag already exists")
		}
		return err
	}
	return nil
}

// GetTagByName retrieves a tag by its exact name.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindOrCreateTagByName finds an existing tag by exact name or creates a new one.
// Returns (tag, created, error) where created is true if a new tag was made.
// A concurrent insert of the same name resolves by re-reading, never by failing.
func (s *Store) FindOrCreateTagByName(ctx context.Context, name string) (*domain.Tag, bool, error) {
	existing, err := s.GetTagByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if err != store.ErrNotFound {
		return nil, false, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}

	t := &domain.Tag{
		ID:        tagID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.CreateTag(ctx, t); err != nil {
		if se, ok := err.(*store.Error); ok && se.Code == store.ErrAlreadyExists.Code {
			// Lost the race: another request created it between our
			// read and insert. The winner's row is just as good.
			existing, err := s.GetTagByName(ctx, name)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return t, true, nil
}

// ListTagsWithUsage returns all tags with the number of dreams currently
// carrying each, most used first, name breaking ties.
func (s *Store) ListTagsWithUsage(ctx context.Context) ([]*domain.TagUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at, COUNT(dt.dream_id) AS usage_count
		FROM tags t
		LEFT JOIN dream_tags dt ON dt.tag_id = t.id
		GROUP BY t.id
		ORDER BY usage_count DESC, t.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.TagUsage
	for rows.Next() {
		var (
			tu        domain.TagUsage
			createdAt string
		)
		if err := rows.Scan(&tu.ID, &tu.Name, &createdAt, &tu.UsageCount); err != nil {
			return nil, err
		}
		tu.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		tags = append(tags, &tu)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []*domain.TagUsage{}
	}

	return tags, nil
}

// GetTagsForDream returns the tag names attached to a dream, sorted.
func (s *Store) GetTagsForDream(ctx context.Context, dreamID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name
		FROM dream_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.dream_id = ?
		ORDER BY t.name ASC`, dreamID)
	if err != nil {
		return nil, fmt.Errorf("query dream tags: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan dream tag: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return names, nil
}

// NormalizeTagNames trims whitespace, drops empties, and dedupes while
// preserving first-seen order.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ReplaceDreamTags replaces a dream's tag set with the given names in a
// single transaction: find-or-create each tag, swap the association rows,
// then sweep tags left with no associations. Running the sweep inside the
// same transaction closes the window where a concurrent associate could
// see a tag vanish mid-flight. A failed sweep is logged and skipped; the
// association change still commits.
// Returns the normalized tag names now attached to the dream.
func (s *Store) ReplaceDreamTags(ctx context.Context, dreamID string, tagNames []string) ([]string, error) {
	names := NormalizeTagNames(tagNames)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	tagIDs := make([]string, 0, len(names))
	for _, name := range names {
		tagID, err := findOrCreateTagTx(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		tagIDs = append(tagIDs, tagID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dream_tags WHERE dream_id = ?`, dreamID); err != nil {
		return nil, fmt.Errorf("delete dream_tags: %w", err)
	}

	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dream_tags (dream_id, tag_id)
			VALUES (?, ?)`,
			dreamID,
			tagID,
		)
		if err != nil {
			return nil, fmt.Errorf("insert dream_tag: %w", err)
		}
	}

	if n, err := deleteOrphanTagsTx(ctx, tx); err != nil {
		// Stale orphan tags are acceptable; failing the user's edit is not.
		s.logger.Warn("orphan tag sweep failed", "error", err)
	} else if n > 0 {
		s.logger.Debug("reclaimed orphan tags", "count", n)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return names, nil
}

// findOrCreateTagTx is FindOrCreateTagByName inside an open transaction.
// SQLite serializes writers, so the cross-connection race resolves at
// the UNIQUE index; within the transaction a conflict means a committed
// row already exists and we re-read it.
func findOrCreateTagTx(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	var tagID string
	err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
	if err == nil {
		return tagID, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("find tag %q: %w", name, err)
	}

	tagID, err = id.Generate("tag")
	if err != nil {
		return "", fmt.Errorf("generate tag id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tags (id, name, created_at)
		VALUES (?, ?, ?)`,
		tagID,
		name,
		formatTime(time.Now().UTC()),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			err = tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
			if err != nil {
				return "", fmt.Errorf("re-read tag %q: %w", name, err)
			}
			return tagID, nil
		}
		return "", fmt.Errorf("insert tag %q: %w", name, err)
	}

	return tagID, nil
}

// deleteOrphanTagsTx removes tags with no remaining associations.
func deleteOrphanTagsTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM tags
		WHERE id NOT IN (SELECT DISTINCT tag_id FROM dream_tags)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
