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

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, username, password, created_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)

	if err := scanner.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts the user and its default tags in one transaction, then colors the tags.
// Sets user.ID. Returns store.ErrAlreadyExists when the username is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User, defaults []domain.DefaultTag) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO users (username, password, created_at)
			VALUES (?, ?, ?)`,
			user.Username,
			user.PasswordHash,
			formatTime(user.CreatedAt),
		)
		if err != nil {
			if store.IsUniqueViolation(err) {
				return store.ErrAlreadyExists.WithMessage("Username already exists.")
			}
			return fmt.Errorf("insert user: %w", err)
		}

		userID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("user id: %w", err)
		}

		for _, t := range defaults {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tags (user_id, name, color, priority, active)
				VALUES (?, ?, NULL, ?, 1)`,
				userID, t.Name, t.Priority,
			); err != nil {
				return fmt.Errorf("insert default tag %q: %w", t.Name, err)
			}
		}

		if err := s.assignMissingColors(ctx, tx, userID); err != nil {
			return err
		}

		user.ID = userID
		return nil
	})
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername retrieves a user by exact username.
// Returns store.ErrNotFound if no user matches.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateCredentials replaces a user's username and password hash.
// Returns store.ErrAlreadyExists when the new username belongs to someone else.
func (s *Store) UpdateCredentials(ctx context.Context, userID int64, username, passwordHash string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, password = ? WHERE id = ?`,
		username, passwordHash, userID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("Username already exists.")
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
