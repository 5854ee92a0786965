package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/grimoireapp/grimoire-server/internal/auth"
	"github.com/grimoireapp/grimoire-server/internal/domain"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
	"github.com/grimoireapp/grimoire-server/internal/id"
	"github.com/grimoireapp/grimoire-server/internal/store"
)

// touchInterval limits how often a session's last-seen time is written.
const touchInterval = time.Minute

var errNotLoggedIn = domainerrors.Unauthorized("Please log in to continue.")

// SessionService issues, resolves and revokes login sessions.
type SessionService struct {
	store    store.Store
	tokens   *auth.TokenService
	duration time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a session service. duration is the lifetime of a new session.
func NewSessionService(
	store store.Store,
	tokens *auth.TokenService,
	duration time.Duration,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		store:    store,
		tokens:   tokens,
		duration: duration,
		logger:   logger,
		now:      time.Now,
	}
}

// IssuedSession is a stored session plus the cookie value that names it.
type IssuedSession struct {
	Session     *domain.Session
	CookieValue string
}

// Create starts a session for user and returns it with its cookie value.
func (s *SessionService) Create(ctx context.Context, user *domain.User, ipAddress, userAgent string) (*IssuedSession, error) {
	sessionID, err := id.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}
	csrf, err := auth.NewCSRFToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		ID:         sessionID,
		UserID:     user.ID,
		CSRFToken:  csrf,
		ExpiresAt:  now.Add(s.duration),
		CreatedAt:  now,
		LastSeenAt: now,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &IssuedSession{
		Session:     session,
		CookieValue: s.tokens.SealSession(session.ID, user.ID, session.ExpiresAt),
	}, nil
}

// Resolve maps a cookie value to its live session and user.
// Any failure is reported as Unauthorized.
func (s *SessionService) Resolve(ctx context.Context, cookieValue string) (*domain.Session, *domain.User, error) {
	if cookieValue == "" {
		return nil, nil, errNotLoggedIn
	}

	claims, err := s.tokens.OpenSession(cookieValue)
	if err != nil {
		return nil, nil, errNotLoggedIn.WithCause(err)
	}

	session, err := s.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errNotLoggedIn.WithCause(err)
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	now := s.now()
	if session.IsExpired(now) {
		if err := s.store.DeleteSession(ctx, session.ID); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, nil, domainerrors.Unauthorized("Your session has expired. Please log in again.")
	}
	if session.UserID != claims.UserID {
		return nil, nil, errNotLoggedIn
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errNotLoggedIn.WithCause(err)
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if now.Sub(session.LastSeenAt) > touchInterval {
		if err := s.store.TouchSession(ctx, session.ID, now); err != nil {
			s.logger.Warn("failed to touch session", "session_id", session.ID, "error", err)
		} else {
			session.LastSeenAt = now
		}
	}

	return session, user, nil
}

// Destroy ends a session.
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DestroyAll ends every session of a user.
func (s *SessionService) DestroyAll(ctx context.Context, userID int64) error {
	if err := s.store.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// PurgeExpired removes expired sessions. Failures are logged, not returned.
func (s *SessionService) PurgeExpired(ctx context.Context) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		s.logger.Warn("failed to purge expired sessions", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("purged expired sessions", "count", n)
	}
}
