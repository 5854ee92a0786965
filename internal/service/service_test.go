package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grimoireapp/grimoire-server/internal/auth"
	"github.com/grimoireapp/grimoire-server/internal/domain"
	"github.com/grimoireapp/grimoire-server/internal/metrics"
	"github.com/grimoireapp/grimoire-server/internal/store/sqlite"
	"github.com/grimoireapp/grimoire-server/internal/validation"
)

var (
	trackerStart = domain.MustParseDate("2026-02-22")
	// Noon keeps the fixed clock on the same civil date in every zone used here.
	fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
)

type testServices struct {
	store    *sqlite.Store
	metrics  *metrics.Metrics
	sessions *SessionService
	auth     *AuthService
	tags     *TagService
	days     *DayService
}

// setupServices wires every service against a temporary database.
// The day service clock is fixed at 2026-03-01.
func setupServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key)
	require.NoError(t, err)

	m := metrics.New()
	v := validation.New()
	sessions := NewSessionService(s, tokens, time.Hour, logger)

	days := NewDayService(s, v, m, logger, trackerStart, time.UTC)
	days.now = func() time.Time { return fixedNow }

	return &testServices{
		store:    s,
		metrics:  m,
		sessions: sessions,
		auth:     NewAuthService(s, sessions, v, m, logger),
		tags:     NewTagService(s, m, logger),
		days:     days,
	}
}

func (ts *testServices) register(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := ts.auth.Register(context.Background(), Credentials{Username: username, Password: "secret"})
	require.NoError(t, err)
	return u
}
