// Package store defines the persistence interface for the Grimoire server.
package store

import (
	"context"
	"time"

	"github.com/grimoireapp/grimoire-server/internal/domain"
)

// Store defines every persistence operation the services use.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Users
	//
	// CreateUser inserts the user and seeds the default tags in one transaction.
	CreateUser(ctx context.Context, user *domain.User, defaults []domain.DefaultTag) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateCredentials(ctx context.Context, userID int64, username, passwordHash string) error

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	TouchSession(ctx context.Context, id string, seenAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// Tags
	//
	// UpsertTag creates the tag or reactivates the existing row with the same name.
	UpsertTag(ctx context.Context, userID int64, name string) (*domain.Tag, error)
	GetTag(ctx context.Context, userID int64, name string) (*domain.Tag, error)
	ListActiveTags(ctx context.Context, userID int64) ([]*domain.Tag, error)
	SetTagColor(ctx context.Context, userID int64, name, color string) error
	SetTagPriorities(ctx context.Context, userID int64, priorities map[string]int) error
	DeactivateTag(ctx context.Context, userID int64, name string) error

	// Day logs
	//
	// SaveDayEntry snapshots the active tags, drops day tags missing from them and upserts
	// the day, all in one transaction. The stored row is returned.
	SaveDayEntry(ctx context.Context, userID int64, entry domain.DayEntry, now time.Time) (*domain.DayLog, error)
	SaveFootnote(ctx context.Context, userID int64, date domain.Date, footnotes string) error
	GetDayLog(ctx context.Context, userID int64, date domain.Date) (*domain.DayLog, error)
	ListDayLogs(ctx context.Context, userID int64, from, to domain.Date) ([]*domain.DayLog, error)
	ListJournal(ctx context.Context, userID int64, limit int) ([]*domain.DayLog, error)
}
