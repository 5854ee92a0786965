package domain

import (
	"strings"
	"time"

	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
)

// DateLayout is the ISO calendar date format used for every stored and transmitted date.
const DateLayout = "2006-01-02"

// LockState describes whether a day's primary fields can be edited.
type LockState int

// Lock states in chronological order relative to today.
const (
	// Sealed days precede the tracker start date and never open.
	Sealed LockState = iota
	// Archived days are past days on or after the start date.
	Archived
	// Active is today.
	Active
	// Future days have not happened yet.
	Future
)

// String returns the lowercase state name.
func (s LockState) String() string {
	switch s {
	case Sealed:
		return "sealed"
	case Archived:
		return "archived"
	case Active:
		return "active"
	case Future:
		return "future"
	default:
		return "unknown"
	}
}

// Label is the status text shown on the calendar.
func (s LockState) Label() string {
	switch s {
	case Sealed:
		return "Sealed"
	case Archived:
		return "Archived"
	case Active:
		return "Today"
	case Future:
		return "Upcoming"
	default:
		return ""
	}
}

// CanEdit reports whether score, tags and blog text may be written.
func (s LockState) CanEdit() bool {
	return s == Active
}

// LockStateOf classifies day d against today and the tracker start date.
// Sealed takes precedence, so a start date after today seals everything before it.
func LockStateOf(d, today, start Date) LockState {
	switch {
	case d.Before(start):
		return Sealed
	case d.Before(today):
		return Archived
	case d.Equal(today):
		return Active
	default:
		return Future
	}
}

// Date is a civil calendar date with no time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses YYYY-MM-DD strictly.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, domainerrors.Validation("Invalid date. Use YYYY-MM-DD.")
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for constants and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the civil date of now in loc.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(now.In(loc))
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// Equal reports whether d and o name the same day.
func (d Date) Equal(o Date) bool {
	return d.Time().Equal(o.Time())
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}
