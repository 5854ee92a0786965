package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	"github.com/grimoireapp/grimoire-server/internal/store"
)

func TestSaveDayEntry_SnapshotAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	saved, err := s.SaveDayEntry(ctx, u.ID, domain.DayEntry{
		Date:     domain.MustParseDate("2026-03-01"),
		Score:    7,
		Tags:     []string{"Sleep", "Unknown", "Study", "Sleep"},
		HasBlog:  true,
		BlogText: "Long day.",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sleep", "Study"}, saved.Tags)
	assert.Equal(t, 7, saved.Score)
	assert.True(t, saved.HasBlog)
	assert.Equal(t, "Long day.", saved.BlogText)
	assert.Equal(t, 1, saved.EditCount)
	assert.True(t, saved.UpdatedAt.Equal(now))

	require.Len(t, saved.Snapshot, 3)
	assert.Equal(t, 10, saved.Snapshot["Study"].Priority)
	assert.NotEmpty(t, saved.Snapshot["Hobby"].Color)
}

func TestSaveDayEntry_IdempotentRepeat(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice")
	entry := domain.DayEntry{Date: domain.MustParseDate("2026-03-01"), Score: 5, Tags: []string{"Study"}}
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := s.SaveDayEntry(ctx, u.ID, entry, first)
	require.NoError(t, err)

	again, err := s.SaveDayEntry(ctx, u.ID, entry, first.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, again.EditCount)
	assert.True(t, again.UpdatedAt.Equal(first))

	entry.Score = 6
	changed, err := s.SaveDayEntry(ctx, u.ID, entry, first.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, changed.EditCount)
	assert.True(t, changed.UpdatedAt.Equal(first.Add(2*time.Hour)))
}

func TestSaveDayEntry_SnapshotSurvivesTagDeletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice")
	date := domain.MustParseDate("2026-03-01")

	before, err := s.SaveDayEntry(ctx, u.ID, domain.DayEntry{Date: date, Tags: []string{"Hobby"}}, time.Now())
	require.NoError(t, err)

	require.NoError(t, s.DeactivateTag(ctx, u.ID, "Hobby"))
	require.NoError(t, s.SetTagColor(ctx, u.ID, "Study", "#000000"))

	after, err := s.GetDayLog(ctx, u.ID, date)
	require.NoError(t, err)
	assert.Equal(t, before.Snapshot, after.Snapshot)
	assert.Equal(t, []string{"Hobby"}, after.Tags)
}

func TestSaveFootnote_DoesNotClobber(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice")
	date := domain.MustParseDate("2026-02-25")
	now := time.Date(2026, 2, 25, 9, 0, 0, 0, time.UTC)

	before, err := s.SaveDayEntry(ctx, u.ID, domain.DayEntry{
		Date: date, Score: 9, Tags: []string{"Study"}, HasBlog: true, BlogText: "entry",
	}, now)
	require.NoError(t, err)

	require.NoError(t, s.SaveFootnote(ctx, u.ID, date, "added later"))

	after, err := s.GetDayLog(ctx, u.ID, date)
	require.NoError(t, err)
	assert.Equal(t, "added later", after.Footnotes)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, before.Tags, after.Tags)
	assert.Equal(t, before.BlogText, after.BlogText)
	assert.Equal(t, before.Snapshot, after.Snapshot)
	assert.Equal(t, before.EditCount, after.EditCount)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}

func TestSaveFootnote_CreatesRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice")
	date := domain.MustParseDate("2025-01-01")

	require.NoError(t, s.SaveFootnote(ctx, u.ID, date, "before the tracker"))

	got, err := s.GetDayLog(ctx, u.ID, date)
	require.NoError(t, err)
	assert.Equal(t, "before the tracker", got.Footnotes)
	assert.Equal(t, 0, got.Score)
	assert.Empty(t, got.Tags)
	assert.Empty(t, got.Snapshot)
	assert.Equal(t, 0, got.EditCount)
	assert.True(t, got.UpdatedAt.IsZero())
	assert.True(t, got.HasContent())
}

func TestGetDayLog_NotFound(t *testing.T) {
	s := newTestStore(t)
	u := createTestUser(t, s, "alice")

	_, err := s.GetDayLog(context.Background(), u.ID, domain.MustParseDate("2026-03-01"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListDayLogs_Range(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice")
	other := createTestUser(t, s, "bob")

	for _, d := range []string{"2026-02-28", "2026-03-01", "2026-03-15", "2026-03-31", "2026-04-01"} {
		require.NoError(t, s.SaveFootnote(ctx, u.ID, domain.MustParseDate(d), "n"))
	}
	require.NoError(t, s.SaveFootnote(ctx, other.ID, domain.MustParseDate("2026-03-02"), "n"))

	logs, err := s.ListDayLogs(ctx, u.ID, domain.MustParseDate("2026-03-01"), domain.MustParseDate("2026-03-31"))
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "2026-03-01", logs[0].Date.String())
	assert.Equal(t, "2026-03-31", logs[2].Date.String())
}

func TestListJournal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "alice")

	_, err := s.SaveDayEntry(ctx, u.ID, domain.DayEntry{Date: domain.MustParseDate("2026-03-01"), HasBlog: true, BlogText: "a"}, time.Now())
	require.NoError(t, err)
	_, err = s.SaveDayEntry(ctx, u.ID, domain.DayEntry{Date: domain.MustParseDate("2026-03-02"), Score: 3}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.SaveFootnote(ctx, u.ID, domain.MustParseDate("2026-03-03"), "note"))
	require.NoError(t, s.SaveFootnote(ctx, u.ID, domain.MustParseDate("2026-03-04"), "   "))

	logs, err := s.ListJournal(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2026-03-03", logs[0].Date.String())
	assert.Equal(t, "2026-03-01", logs[1].Date.String())

	limited, err := s.ListJournal(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
