package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	"github.com/grimoireapp/grimoire-server/internal/service"
)

func (s *Server) registerCalendarRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCalendar",
		Method:      http.MethodGet,
		Path:        "/api/calendar",
		Summary:     "Month calendar",
		Description: "Returns the Monday-first month grid with each day's lock state and log",
		Tags:        []string{"Calendar"},
	}, s.handleGetCalendar)

	huma.Register(s.api, huma.Operation{
		OperationID: "getJournal",
		Method:      http.MethodGet,
		Path:        "/api/journal",
		Summary:     "Journal feed",
		Description: "Returns days with journal text or footnotes, newest first",
		Tags:        []string{"Calendar"},
	}, s.handleGetJournal)
}

// === DTOs ===

// GetCalendarInput contains parameters for the month grid.
type GetCalendarInput struct {
	Year  int `query:"year" minimum:"0" maximum:"9999" doc:"Year; defaults to the current year"`
	Month int `query:"month" minimum:"0" maximum:"12" doc:"Month 1-12; defaults to the current month"`
}

// CalendarOutput wraps the month grid for Huma.
type CalendarOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         *service.CalendarMonth
}

// GetJournalInput contains parameters for the journal feed.
type GetJournalInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"1000" doc:"Maximum entries; 0 returns all"`
}

// JournalResponse lists journal entries.
type JournalResponse struct {
	Entries []domain.JournalEntry `json:"entries" doc:"Entries, newest first"`
}

// JournalOutput wraps the journal feed for Huma.
type JournalOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         JournalResponse
}

// === Handlers ===

func (s *Server) handleGetCalendar(ctx context.Context, input *GetCalendarInput) (*CalendarOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	month, err := s.services.Day.Calendar(ctx, user.ID, input.Year, input.Month)
	if err != nil {
		return nil, err
	}

	return &CalendarOutput{CacheControl: CacheNoStore, Body: month}, nil
}

func (s *Server) handleGetJournal(ctx context.Context, input *GetJournalInput) (*JournalOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Day.Journal(ctx, user.ID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &JournalOutput{CacheControl: CacheNoStore, Body: JournalResponse{Entries: entries}}, nil
}
