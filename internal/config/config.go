// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/grimoireapp/grimoire-server/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Server  ServerConfig
	Auth    AuthConfig
	Tracker TrackerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// Version is the build version. It is set by the binary, not loaded.
	Version string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds on-disk storage configuration.
type StorageConfig struct {
	// DataPath holds the SQLite database and the session key.
	DataPath string
}

// DatabasePath returns the SQLite file inside the data directory.
func (c StorageConfig) DatabasePath() string {
	return filepath.Join(c.DataPath, "grimoire.db")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port               string        // Server port (default: 5000)
	ReadTimeout        time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout       time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout        time.Duration // HTTP idle timeout (default: 60s)
	CORSAllowedOrigins []string      // Empty disables CORS handling
	SecureCookies      bool          // Mark cookies Secure (default: true in production)
}

// AuthConfig holds session and login configuration.
type AuthConfig struct {
	SessionDuration    time.Duration // e.g., 720h (30 days)
	LoginRatePerMinute int
	LoginBurst         int
}

// TrackerConfig holds the calendar rules.
type TrackerConfig struct {
	// StartDate is the first day that can ever be edited. Earlier days are sealed.
	StartDate domain.Date
	// Location decides when "today" rolls over.
	Location *time.Location
}

// option is one configuration key, settable by flag or environment.
type option struct {
	flag  string
	env   string
	usage string
}

var options = []option{
	{"env", "ENV", "Environment (development, staging, production)"},
	{"log-level", "LOG_LEVEL", "Log level (debug, info, warn, error)"},
	{"data-path", "DATA_PATH", "Directory for the database and session key (default: ~/Grimoire)"},
	{"port", "SERVER_PORT", "Server port (default: 5000)"},
	{"read-timeout", "SERVER_READ_TIMEOUT", "HTTP read timeout (default: 15s)"},
	{"write-timeout", "SERVER_WRITE_TIMEOUT", "HTTP write timeout (default: 15s)"},
	{"idle-timeout", "SERVER_IDLE_TIMEOUT", "HTTP idle timeout (default: 60s)"},
	{"cors-allowed-origins", "CORS_ALLOWED_ORIGINS", "Comma-separated origins allowed to call the JSON API"},
	{"secure-cookies", "SECURE_COOKIES", "Mark cookies Secure (default: true in production)"},
	{"session-duration", "SESSION_DURATION", "Session lifetime (default: 720h)"},
	{"login-rate-per-minute", "LOGIN_RATE_PER_MINUTE", "Login attempts allowed per minute per IP (default: 10)"},
	{"login-burst", "LOGIN_BURST", "Login attempts allowed in a burst (default: 5)"},
	{"tracker-start-date", "TRACKER_START_DATE", "First editable day, YYYY-MM-DD (default: 2026-02-22)"},
	{"tracker-timezone", "TRACKER_TIMEZONE", "IANA time zone deciding today (default: Local)"},
}

// Flags holds the command-line values bound by BindFlags.
type Flags struct {
	values  map[string]*string
	envFile *string
}

// BindFlags registers every configuration flag on fs.
// Flags default to empty so unset flags fall through to the environment.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{values: make(map[string]*string, len(options))}
	for _, o := range options {
		f.values[o.env] = fs.String(o.flag, "", o.usage)
	}
	f.envFile = fs.String("env-file", ".env", "Path to .env file")
	return f
}

func (f *Flags) value(envKey string) string {
	if f == nil {
		return ""
	}
	if v, ok := f.values[envKey]; ok && v != nil {
		return *v
	}
	return ""
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
// flags may be nil.
func LoadConfig(flags *Flags) (*Config, error) {
	envFile := ".env"
	if flags != nil && flags.envFile != nil {
		envFile = *flags.envFile
	}
	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	get := func(envKey, defaultValue string) string {
		return getConfigValue(flags.value(envKey), envKey, defaultValue)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: get("ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: get("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: get("DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:               get("SERVER_PORT", "5000"),
			CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "")),
		},
	}

	var err error
	if cfg.Server.SecureCookies, err = parseBool(get("SECURE_COOKIES", ""), cfg.App.Environment == "production"); err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIES: %w", err)
	}

	durations := []struct {
		key, def string
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"SESSION_DURATION", "720h", &cfg.Auth.SessionDuration},
	}
	for _, d := range durations {
		raw := get(d.key, d.def)
		if *d.dst, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.key, raw, err)
		}
	}

	ints := []struct {
		key, def string
		dst      *int
	}{
		{"LOGIN_RATE_PER_MINUTE", "10", &cfg.Auth.LoginRatePerMinute},
		{"LOGIN_BURST", "5", &cfg.Auth.LoginBurst},
	}
	for _, n := range ints {
		raw := get(n.key, n.def)
		if *n.dst, err = strconv.Atoi(strings.TrimSpace(raw)); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", n.key, raw, err)
		}
	}

	rawStart := get("TRACKER_START_DATE", "2026-02-22")
	if cfg.Tracker.StartDate, err = domain.ParseDate(rawStart); err != nil {
		return nil, fmt.Errorf("invalid TRACKER_START_DATE %q: %w", rawStart, err)
	}

	rawZone := get("TRACKER_TIMEZONE", "Local")
	if cfg.Tracker.Location, err = time.LoadLocation(rawZone); err != nil {
		return nil, fmt.Errorf("invalid TRACKER_TIMEZONE %q: %w", rawZone, err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	if c.Auth.SessionDuration <= 0 {
		return errors.New("session duration must be positive")
	}
	if c.Auth.LoginRatePerMinute <= 0 || c.Auth.LoginBurst <= 0 {
		return errors.New("login rate and burst must be positive")
	}

	if c.Tracker.StartDate.IsZero() {
		return errors.New("tracker start date is required")
	}
	if c.Tracker.Location == nil {
		return errors.New("tracker time zone is required")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/Grimoire.
func (c *Config) expandDataPath() error {
	defaultPath := ""
	if c.Storage.DataPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		defaultPath = filepath.Join(homeDir, "Grimoire")
	}

	expanded, err := expandPath(c.Storage.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// parseBool accepts true/false, 1/0, yes/no and on/off. Empty returns the default.
func parseBool(raw string, defaultValue bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return defaultValue, nil
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", raw)
	}
}

func splitList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
