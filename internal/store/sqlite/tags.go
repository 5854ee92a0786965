package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	"github.com/grimoireapp/grimoire-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, user_id, name, color, priority, active`

var errTagNotFound = store.ErrNotFound.WithMessage("Tag not found.")

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t      domain.Tag
		color  sql.NullString
		active int
	)

	if err := scanner.Scan(&t.ID, &t.UserID, &t.Name, &color, &t.Priority, &active); err != nil {
		return nil, err
	}

	t.Color = color.String
	t.Active = active == 1
	return &t, nil
}

// UpsertTag adds a tag or reactivates the existing row with that name, keeping its id.
// Either way the tag moves to the bottom: one below the lowest priority among the
// user's other active tags, or domain.DefaultPriority when there are none.
func (s *Store) UpsertTag(ctx context.Context, userID int64, name string) (*domain.Tag, error) {
	var tag *domain.Tag

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tags (user_id, name, color, priority, active)
			VALUES (?, ?, NULL, COALESCE(
				(SELECT MIN(priority) FROM tags WHERE user_id = ? AND active = 1 AND name <> ?) - 1,
				?), 1)
			ON CONFLICT (user_id, name) DO UPDATE SET
				active = 1,
				priority = excluded.priority`,
			userID, name, userID, name, domain.DefaultPriority,
		)
		if err != nil {
			return fmt.Errorf("upsert tag: %w", err)
		}

		if err := s.assignMissingColors(ctx, tx, userID); err != nil {
			return err
		}

		tag, err = getTag(ctx, tx, userID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// GetTag retrieves a tag by name, active or not.
// Returns store.ErrNotFound if the user has no such tag.
func (s *Store) GetTag(ctx context.Context, userID int64, name string) (*domain.Tag, error) {
	return getTag(ctx, s.db, userID, name)
}

func getTag(ctx context.Context, q queryer, userID int64, name string) (*domain.Tag, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = ? AND name = ?`, userID, name)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListActiveTags returns the user's active tags, highest priority first.
func (s *Store) ListActiveTags(ctx context.Context, userID int64) ([]*domain.Tag, error) {
	return listActiveTags(ctx, s.db, userID)
}

func listActiveTags(ctx context.Context, q queryer, userID int64) ([]*domain.Tag, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags
		WHERE user_id = ? AND active = 1
		ORDER BY priority DESC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// SetTagColor stores an already normalized color. Inactive tags can be recolored.
// Returns store.ErrNotFound if the user has no such tag.
func (s *Store) SetTagColor(ctx context.Context, userID int64, name, color string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tags SET color = ? WHERE user_id = ? AND name = ?`, color, userID, name)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errTagNotFound
	}
	return nil
}

// SetTagPriorities writes the given priorities to active tags in one transaction.
// Names without an active tag are ignored.
func (s *Store) SetTagPriorities(ctx context.Context, userID int64, priorities map[string]int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for name, priority := range priorities {
			if _, err := tx.ExecContext(ctx,
				`UPDATE tags SET priority = ? WHERE user_id = ? AND name = ? AND active = 1`,
				priority, userID, name,
			); err != nil {
				return fmt.Errorf("set priority for %q: %w", name, err)
			}
		}
		return nil
	})
}

// DeactivateTag soft-deletes an active tag. Day logs keep their snapshots.
// Returns store.ErrNotFound if the user has no active tag with that name.
func (s *Store) DeactivateTag(ctx context.Context, userID int64, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tags SET active = 0 WHERE user_id = ? AND name = ? AND active = 1`, userID, name)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errTagNotFound
	}
	return nil
}

// assignMissingColors gives every uncolored tag of the user its palette color.
func (s *Store) assignMissingColors(ctx context.Context, tx *sql.Tx, userID int64) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM tags WHERE user_id = ? AND color IS NULL ORDER BY id`, userID)
	if err != nil {
		return fmt.Errorf("find uncolored tags: %w", err)
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		c := s.colorFor(id)
		if _, err := tx.ExecContext(ctx,
			`UPDATE tags SET color = ? WHERE id = ?`, c, id,
		); err != nil {
			return fmt.Errorf("assign color to tag %d: %w", id, err)
		}
		s.logger.Debug("assigned tag color", "user_id", userID, "tag_id", id, "color", c)
	}
	return nil
}
