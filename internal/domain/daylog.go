package domain

import (
	"strings"
	"time"
)

// DayLog is one user's record for one calendar date.
type DayLog struct {
	UserID    int64
	Date      Date
	Score     int
	HasBlog   bool
	BlogText  string
	Footnotes string
	Tags      []string
	Snapshot  TagSnapshot
	EditCount int
	UpdatedAt time.Time
}

// HasContent reports whether the day has a journal entry or non-blank footnotes.
func (l *DayLog) HasContent() bool {
	return l.HasBlog || strings.TrimSpace(l.Footnotes) != ""
}

// DayEntry is the full-field write applied to an active day.
type DayEntry struct {
	Date     Date
	Score    int
	Tags     []string
	HasBlog  bool
	BlogText string
}

// JournalEntry is a dated piece of writing shown in the journal feed.
type JournalEntry struct {
	Date      string `json:"date"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Footnotes string `json:"footnotes"`
	HasBlog   bool   `json:"has_blog"`
}

// JournalEntryOf builds the feed entry for a day. The first non-blank line of the
// blog text becomes the title, without leading '#' marks, and the remaining lines
// the body. Without such a line the title is "Entry <date>".
func JournalEntryOf(l *DayLog) JournalEntry {
	title, body := "", l.BlogText
	lines := strings.Split(l.BlogText, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		title = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		rest := append(lines[:i:i], lines[i+1:]...)
		body = strings.TrimSpace(strings.Join(rest, "\n"))
		break
	}
	if title == "" {
		title = "Entry " + l.Date.String()
	}
	return JournalEntry{
		Date:      l.Date.String(),
		Title:     title,
		Body:      body,
		Footnotes: l.Footnotes,
		HasBlog:   l.HasBlog,
	}
}
