package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/grimoireapp/grimoire-server/internal/auth"
	"github.com/grimoireapp/grimoire-server/internal/domain"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
	"github.com/grimoireapp/grimoire-server/internal/metrics"
	"github.com/grimoireapp/grimoire-server/internal/store"
	"github.com/grimoireapp/grimoire-server/internal/validation"
)

var errBadLogin = domainerrors.InvalidCredentials("Invalid username or password.")

// AuthService handles registration, login and credential changes.
// Session lifecycle is delegated to SessionService.
type AuthService struct {
	store     store.Store
	sessions  *SessionService
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	sessions *SessionService,
	validator *validation.Validator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		sessions:  sessions,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

// Credentials is a username and password pair from the login and register forms.
type Credentials struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// ChangeCredentialsRequest updates a username, a password or both.
// Empty new values keep the current ones.
type ChangeCredentialsRequest struct {
	CurrentPassword string `form:"current_password" validate:"required"`
	NewUsername     string `form:"new_username"`
	NewPassword     string `form:"new_password"`
}

// Register creates an account with the default tags.
func (s *AuthService) Register(ctx context.Context, req Credentials) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	username, err := domain.NormalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, domainerrors.Validation(capitalize(err.Error()) + ".")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Username: username, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user, domain.DefaultTags); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("Username already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.Registrations.Inc()
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks credentials and returns the matching user.
// Unknown usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req Credentials) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.sessions.PurgeExpired(ctx)

	user, err := s.store.GetUserByUsername(ctx, norm.NFC.String(strings.TrimSpace(req.Username)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.Logins.WithLabelValues("failure").Inc()
			return nil, errBadLogin
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.metrics.Logins.WithLabelValues("failure").Inc()
		s.logger.Info("login failed", "username", req.Username)
		return nil, errBadLogin
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, req.Password)
	}

	s.metrics.Logins.WithLabelValues("success").Inc()
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// ChangeCredentials verifies the current password, applies the changes and
// ends every session of the user. Callers issue a fresh session afterwards.
func (s *AuthService) ChangeCredentials(ctx context.Context, userID int64, req ChangeCredentialsRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("Current password is incorrect.")
	}

	if req.NewUsername == "" && req.NewPassword == "" {
		return nil, domainerrors.Validation("Enter a new username or a new password.")
	}

	username := user.Username
	if req.NewUsername != "" {
		if username, err = domain.NormalizeUsername(req.NewUsername); err != nil {
			return nil, err
		}
	}

	hash := user.PasswordHash
	if req.NewPassword != "" {
		if err := auth.ValidatePassword(req.NewPassword); err != nil {
			return nil, domainerrors.Validation(capitalize(err.Error()) + ".")
		}
		if hash, err = auth.HashPassword(req.NewPassword); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.store.UpdateCredentials(ctx, userID, username, hash); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("Username already exists.")
		}
		return nil, fmt.Errorf("update credentials: %w", err)
	}

	if err := s.sessions.DestroyAll(ctx, userID); err != nil {
		return nil, err
	}

	user.Username = username
	user.PasswordHash = hash
	s.logger.Info("credentials changed", "user_id", userID)
	return user, nil
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// upgradeHash rehashes a verified password with the current settings.
// Failure is logged only; the old hash keeps working.
func (s *AuthService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.store.UpdateCredentials(ctx, user.ID, user.Username, hash)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	s.logger.Info("password hash upgraded", "user_id", user.ID)
}
