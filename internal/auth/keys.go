// Package auth provides password hashing, session cookie sealing and CSRF tokens.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"aidanwoods.dev/go-paseto"
)

// KeyFileName is the file holding the hex-encoded session key inside the data directory.
const KeyFileName = "session.key"

// LoadOrGenerateKey returns the 32-byte key that seals session cookies.
// The key lives in <dataPath>/session.key; a fresh one is written on first start.
// Replacing the file signs every user out.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, KeyFileName)

	//#nosec G304 -- key path is derived from the configured data directory
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		key, err := paseto.V4SymmetricKeyFromHex(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("invalid session key in %s: %w", keyPath, err)
		}
		return key.ExportBytes(), nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read session key: %w", err)
	}

	key := paseto.NewV4SymmetricKey()
	if err := writeKeyFile(dataPath, keyPath, key.ExportHex()); err != nil {
		return nil, err
	}
	return key.ExportBytes(), nil
}

// writeKeyFile writes through a temp file so a crash never leaves a truncated key.
func writeKeyFile(dir, path, contents string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, KeyFileName+".*")
	if err != nil {
		return fmt.Errorf("save session key: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(contents); err != nil {
		tmp.Close()
		return fmt.Errorf("save session key: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save session key: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("save session key: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save session key: %w", err)
	}
	return nil
}
