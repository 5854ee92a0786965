package di

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grimoireapp/grimoire-server/internal/config"
	"github.com/grimoireapp/grimoire-server/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:     config.AppConfig{Environment: "development", Version: "test"},
		Logger:  config.LoggerConfig{Level: "error"},
		Storage: config.StorageConfig{DataPath: t.TempDir()},
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
		Auth: config.AuthConfig{
			SessionDuration:    time.Hour,
			LoginRatePerMinute: 10,
			LoginBurst:         5,
		},
		Tracker: config.TrackerConfig{
			StartDate: domain.MustParseDate("2026-02-22"),
			Location:  time.UTC,
		},
	}
}

func TestBootstrap_ServesHealth(t *testing.T) {
	injector := NewContainer(testConfig(t))

	srv, err := Bootstrap(injector)
	require.NoError(t, err)
	t.Cleanup(func() { injector.Shutdown() }) //nolint:errcheck // best effort in tests

	resp, err := http.Get("http://" + srv.ListenAddr().String() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"version":"test"`)
}

func TestBootstrap_Shutdown(t *testing.T) {
	injector := NewContainer(testConfig(t))

	srv, err := Bootstrap(injector)
	require.NoError(t, err)
	addr := srv.ListenAddr().String()

	injector.Shutdown() //nolint:errcheck // the report is checked via the closed listener

	client := &http.Client{Timeout: time.Second}
	_, err = client.Get("http://" + addr + "/health")
	assert.Error(t, err, "server stops accepting connections after shutdown")
}
