package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	"github.com/grimoireapp/grimoire-server/internal/store"
)

// logColumns is the ordered list of columns selected in day log queries.
// Must match the scan order in scanDayLog.
const logColumns = `user_id, date, score, has_blog, blog_text, footnotes, tags, tags_snapshot, edit_count, updated_at`

// logChanged is true when an upsert would alter any primary field of the existing row.
const logChanged = `(logs.score IS NOT excluded.score
	OR logs.has_blog IS NOT excluded.has_blog
	OR logs.blog_text IS NOT excluded.blog_text
	OR logs.tags IS NOT excluded.tags
	OR logs.tags_snapshot IS NOT excluded.tags_snapshot)`

// scanDayLog scans a sql.Row (or sql.Rows via its Scan method) into a domain.DayLog.
func scanDayLog(scanner interface{ Scan(dest ...any) error }) (*domain.DayLog, error) {
	var (
		l         domain.DayLog
		date      string
		hasBlog   int
		tags      string
		snapshot  string
		updatedAt sql.NullString
	)

	err := scanner.Scan(
		&l.UserID,
		&date,
		&l.Score,
		&hasBlog,
		&l.BlogText,
		&l.Footnotes,
		&tags,
		&snapshot,
		&l.EditCount,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Date, err = domain.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("stored date %q: %w", date, err)
	}
	l.HasBlog = hasBlog == 1
	l.Tags = domain.DecodeTagList(tags)
	l.Snapshot, err = domain.DecodeSnapshot(snapshot)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid && updatedAt.String != "" {
		l.UpdatedAt, err = parseTime(updatedAt.String)
		if err != nil {
			return nil, err
		}
	}

	return &l, nil
}

// SaveDayEntry writes the primary fields of a day.
//
// Reading the active registry, filtering the day's tags against it and the upsert share
// one transaction. Edit count and update time only advance when a stored value changes.
func (s *Store) SaveDayEntry(ctx context.Context, userID int64, entry domain.DayEntry, now time.Time) (*domain.DayLog, error) {
	var saved *domain.DayLog

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		active, err := listActiveTags(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("list active tags: %w", err)
		}

		snapshot := domain.SnapshotOf(active)

		kept := make([]string, 0, len(entry.Tags))
		seen := make(map[string]bool, len(entry.Tags))
		for _, name := range entry.Tags {
			if _, ok := snapshot[name]; ok && !seen[name] {
				seen[name] = true
				kept = append(kept, name)
			}
		}

		encoded, err := domain.EncodeSnapshot(snapshot)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO logs (user_id, date, score, has_blog, blog_text, tags, tags_snapshot, edit_count, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT (user_id, date) DO UPDATE SET
				edit_count = CASE WHEN `+logChanged+` THEN logs.edit_count + 1 ELSE logs.edit_count END,
				updated_at = CASE WHEN `+logChanged+` THEN excluded.updated_at ELSE logs.updated_at END,
				score = excluded.score,
				has_blog = excluded.has_blog,
				blog_text = excluded.blog_text,
				tags = excluded.tags,
				tags_snapshot = excluded.tags_snapshot`,
			userID,
			entry.Date.String(),
			entry.Score,
			boolToInt(entry.HasBlog),
			entry.BlogText,
			domain.EncodeTagList(kept),
			encoded,
			formatTime(now),
		)
		if err != nil {
			return fmt.Errorf("upsert day log: %w", err)
		}

		saved, err = getDayLog(ctx, tx, userID, entry.Date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// SaveFootnote writes only the footnotes of a day, creating the row if needed.
// Score, tags, journal text and edit metadata are never touched.
func (s *Store) SaveFootnote(ctx context.Context, userID int64, date domain.Date, footnotes string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO logs (user_id, date, footnotes)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET footnotes = excluded.footnotes`,
		userID, date.String(), footnotes,
	)
	if err != nil {
		return fmt.Errorf("upsert footnote: %w", err)
	}
	return nil
}

// GetDayLog retrieves one day.
// Returns store.ErrNotFound if nothing has been recorded for it.
func (s *Store) GetDayLog(ctx context.Context, userID int64, date domain.Date) (*domain.DayLog, error) {
	return getDayLog(ctx, s.db, userID, date)
}

func getDayLog(ctx context.Context, q queryer, userID int64, date domain.Date) (*domain.DayLog, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM logs WHERE user_id = ? AND date = ?`, userID, date.String())

	l, err := scanDayLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListDayLogs returns recorded days in [from, to], oldest first.
func (s *Store) ListDayLogs(ctx context.Context, userID int64, from, to domain.Date) ([]*domain.DayLog, error) {
	return s.queryDayLogs(ctx,
		`SELECT `+logColumns+` FROM logs
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		userID, from.String(), to.String())
}

// ListJournal returns days with a journal entry or footnotes, newest first.
// A limit of zero or less returns every entry.
func (s *Store) ListJournal(ctx context.Context, userID int64, limit int) ([]*domain.DayLog, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryDayLogs(ctx,
		`SELECT `+logColumns+` FROM logs
		WHERE user_id = ? AND (has_blog = 1 OR TRIM(footnotes) <> '')
		ORDER BY date DESC
		LIMIT ?`,
		userID, limit)
}

func (s *Store) queryDayLogs(ctx context.Context, query string, args ...any) ([]*domain.DayLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*domain.DayLog{}
	for rows.Next() {
		l, err := scanDayLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
