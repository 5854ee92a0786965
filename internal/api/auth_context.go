package api

import (
	"context"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	sessionKey ctxKey = "session"
	userKey    ctxKey = "user"
)

// withSession stores the resolved session and its user in context.
func withSession(ctx context.Context, session *domain.Session, user *domain.User) context.Context {
	ctx = context.WithValue(ctx, sessionKey, session)
	return context.WithValue(ctx, userKey, user)
}

// sessionFrom returns the session loaded for this request, if any.
func sessionFrom(ctx context.Context) *domain.Session {
	session, _ := ctx.Value(sessionKey).(*domain.Session)
	return session
}

// userFrom returns the logged-in user, if any.
func userFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

// RequireUser returns the logged-in user or an Unauthorized error.
func RequireUser(ctx context.Context) (*domain.User, error) {
	user := userFrom(ctx)
	if user == nil {
		return nil, domainerrors.Unauthorized("Please log in to continue.")
	}
	return user, nil
}
