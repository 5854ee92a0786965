package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
	"github.com/grimoireapp/grimoire-server/internal/metrics"
	"github.com/grimoireapp/grimoire-server/internal/store"
	"github.com/grimoireapp/grimoire-server/internal/validation"
)

// DayService writes day logs and builds the calendar and journal views.
type DayService struct {
	store     store.Store
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger

	start domain.Date
	loc   *time.Location
	now   func() time.Time
}

// NewDayService creates a day service. start is the first date that can ever be edited
// and loc is the zone whose wall clock decides what "today" is.
func NewDayService(
	store store.Store,
	validator *validation.Validator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	start domain.Date,
	loc *time.Location,
) *DayService {
	if loc == nil {
		loc = time.Local
	}
	return &DayService{
		store:     store,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
		start:     start,
		loc:       loc,
		now:       time.Now,
	}
}

// UpdateDayRequest is the full-field write from the day editor.
// Tags is the comma-joined list of checked tag names.
type UpdateDayRequest struct {
	Date     string `form:"date" validate:"required,isodate"`
	Score    int    `form:"score" validate:"gte=0,lte=100"`
	Tags     string `form:"tags"`
	HasBlog  bool   `form:"has_blog"`
	BlogText string `form:"blog_text"`
}

// UpdateFootnoteRequest replaces a day's footnotes.
type UpdateFootnoteRequest struct {
	Date      string `form:"date" validate:"required,isodate"`
	Footnotes string `form:"footnotes"`
}

// Today returns the current date in the tracker's zone.
func (s *DayService) Today() domain.Date {
	return domain.Today(s.now(), s.loc)
}

// StateOf classifies d against the current date.
func (s *DayService) StateOf(d domain.Date) domain.LockState {
	return domain.LockStateOf(d, s.Today(), s.start)
}

// UpdateDay writes score, tags and blog text for today. Any other date is refused
// without touching the stored row. Tags missing from the active registry are dropped.
func (s *DayService) UpdateDay(ctx context.Context, userID int64, req UpdateDayRequest) (*domain.DayLog, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	if state := s.StateOf(date); !state.CanEdit() {
		s.metrics.LockRejections.WithLabelValues(state.String()).Inc()
		s.metrics.DayUpdates.WithLabelValues("rejected").Inc()
		s.logger.Info("day update refused", "user_id", userID, "date", date.String(), "state", state.String())
		return nil, lockedError(state)
	}

	if err := s.validator.Validate(req); err != nil {
		s.metrics.DayUpdates.WithLabelValues("invalid").Inc()
		return nil, err
	}

	entry := domain.DayEntry{
		Date:     date,
		Score:    req.Score,
		Tags:     sanitizeTagList(req.Tags),
		HasBlog:  req.HasBlog || strings.TrimSpace(req.BlogText) != "",
		BlogText: req.BlogText,
	}

	log, err := s.store.SaveDayEntry(ctx, userID, entry, s.now())
	if err != nil {
		s.metrics.DayUpdates.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save day: %w", err)
	}

	s.metrics.DayUpdates.WithLabelValues("success").Inc()
	s.logger.Info("day updated",
		"user_id", userID,
		"date", date.String(),
		"score", log.Score,
		"tags", len(log.Tags),
		"edit_count", log.EditCount,
	)
	return log, nil
}

// UpdateFootnote replaces the footnotes of any valid date and returns the stored text.
func (s *DayService) UpdateFootnote(ctx context.Context, userID int64, req UpdateFootnoteRequest) (string, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(req.Footnotes)
	if err := s.store.SaveFootnote(ctx, userID, date, text); err != nil {
		return "", fmt.Errorf("save footnote: %w", err)
	}

	s.metrics.FootnoteWrites.Inc()
	s.logger.Info("footnote saved", "user_id", userID, "date", date.String(), "length", len(text))
	return text, nil
}

// GetDay returns the stored log for a date, or an empty log when the day has none.
func (s *DayService) GetDay(ctx context.Context, userID int64, date domain.Date) (*domain.DayLog, error) {
	log, err := s.store.GetDayLog(ctx, userID, date)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &domain.DayLog{UserID: userID, Date: date, Snapshot: domain.TagSnapshot{}}, nil
		}
		return nil, fmt.Errorf("get day: %w", err)
	}
	return log, nil
}

// Journal returns days with writing, newest first. limit <= 0 returns all of them.
func (s *DayService) Journal(ctx context.Context, userID int64, limit int) ([]domain.JournalEntry, error) {
	logs, err := s.store.ListJournal(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}

	entries := make([]domain.JournalEntry, 0, len(logs))
	for _, l := range logs {
		if !l.HasContent() {
			continue
		}
		entries = append(entries, domain.JournalEntryOf(l))
	}
	return entries, nil
}

func lockedError(state domain.LockState) error {
	switch state {
	case domain.Sealed:
		return domainerrors.Forbidden("This day is before the tracker began. Use footnotes to add notes.")
	case domain.Future:
		return domainerrors.Forbidden("This day has not happened yet. Use footnotes to add notes.")
	default:
		return domainerrors.Forbidden("This day is archived. Use footnotes to add notes.")
	}
}

// sanitizeTagList splits a comma-joined list, cleans each name and drops
// invalid names and repeats while keeping the original order.
func sanitizeTagList(raw string) []string {
	names := domain.DecodeTagList(raw)
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		name, err := domain.SanitizeTagName(n)
		if err != nil || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
