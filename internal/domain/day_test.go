package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
)

func TestLockStateOf_Scenario(t *testing.T) {
	start := MustParseDate("2026-02-22")
	today := MustParseDate("2026-03-01")

	tests := []struct {
		date string
		want LockState
	}{
		{"2026-02-21", Sealed},
		{"2025-12-31", Sealed},
		{"2026-02-22", Archived},
		{"2026-02-28", Archived},
		{"2026-03-01", Active},
		{"2026-03-02", Future},
		{"2027-01-01", Future},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, LockStateOf(MustParseDate(tt.date), today, start))
		})
	}
}

func TestLockStateOf_SealedBeatsFuture(t *testing.T) {
	start := MustParseDate("2026-06-01")
	today := MustParseDate("2026-03-01")

	assert.Equal(t, Sealed, LockStateOf(MustParseDate("2026-04-01"), today, start))
	assert.Equal(t, Sealed, LockStateOf(today, today, start))
	assert.Equal(t, Future, LockStateOf(MustParseDate("2026-06-01"), today, start))
}

func TestLockState_Edges(t *testing.T) {
	assert.True(t, Active.CanEdit())
	for _, s := range []LockState{Sealed, Archived, Future} {
		assert.False(t, s.CanEdit(), s.String())
	}

	assert.Equal(t, "archived", Archived.String())
	assert.Equal(t, "Today", Active.Label())
	assert.Equal(t, "Upcoming", Future.Label())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 1}, d)
	assert.Equal(t, "2026-03-01", d.String())

	for _, bad := range []string{"", "2026-3-1", "2026-02-30", "03/01/2026", "yesterday"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, bad)
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2026-02-28")

	assert.Equal(t, "2026-03-01", d.AddDays(1).String())
	assert.Equal(t, "2026-02-27", d.AddDays(-1).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.Equal(MustParseDate("2026-02-28")))
	assert.Equal(t, time.Saturday, d.Weekday())
	assert.True(t, Date{}.IsZero())
}

func TestToday_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01", Today(now, time.UTC).String())
	assert.Equal(t, "2026-03-02", Today(now, tokyo).String())
}
