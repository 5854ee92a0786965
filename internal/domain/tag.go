package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
)

// MaxTagNameLength is the longest tag name accepted, in characters.
const MaxTagNameLength = 60

// DefaultPriority is given to a new tag when the user has no other active tags.
const DefaultPriority = 99

// Tag is a user-owned habit category. Higher Priority sorts first.
// Color is empty until the palette assigns one.
type Tag struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Priority int    `json:"priority"`
	Active   bool   `json:"active"`
}

// Style returns the snapshot view of the tag.
func (t Tag) Style() TagStyle {
	return TagStyle{Color: t.Color, Priority: t.Priority}
}

// DefaultTag seeds a new account.
type DefaultTag struct {
	Name     string
	Priority int
}

// DefaultTags are created for every new user, in insertion order.
var DefaultTags = []DefaultTag{
	{Name: "Study", Priority: 10},
	{Name: "Sleep", Priority: 8},
	{Name: "Hobby", Priority: 5},
}

// SanitizeTagName strips commas (the tag list separator), trims whitespace and
// composes the name to NFC so visually equal names map to one tag.
// Empty names, names over MaxTagNameLength characters and names containing NUL are rejected.
func SanitizeTagName(raw string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(strings.ReplaceAll(raw, ",", "")))
	if name == "" {
		return "", domainerrors.Validation("Tag name cannot be empty.")
	}
	if strings.ContainsRune(name, 0) {
		return "", domainerrors.Validation("Tag name contains invalid characters.")
	}
	if utf8.RuneCountInString(name) > MaxTagNameLength {
		return "", domainerrors.Validationf("Tag name must be %d characters or fewer.", MaxTagNameLength)
	}
	return name, nil
}

var hexColorPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeHexColor accepts RGB, #RGB, RRGGBB and #RRGGBB and returns #RRGGBB in upper case.
func NormalizeHexColor(raw string) (string, error) {
	m := hexColorPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", domainerrors.Validation("Invalid color. Use a hex value like #A1B2C3.")
	}
	digits := strings.ToUpper(m[1])
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	return "#" + digits, nil
}
