package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
)

// Username limits.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
)

// User represents an account. Only the username and password can change after registration.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeUsername trims surrounding whitespace, composes to NFC and checks
// length and characters. Case is preserved.
func NormalizeUsername(raw string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(raw))
	n := utf8.RuneCountInString(name)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return "", domainerrors.Validationf("Username must be between %d and %d characters.", MinUsernameLength, MaxUsernameLength)
	}
	if strings.ContainsAny(name, " \t\r\n\x00") {
		return "", domainerrors.Validation("Username cannot contain spaces.")
	}
	return name, nil
}
