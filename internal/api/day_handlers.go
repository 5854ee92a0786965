package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
	"github.com/grimoireapp/grimoire-server/internal/http/response"
	"github.com/grimoireapp/grimoire-server/internal/service"
)

// UpdateDayResponse is returned after a successful day update.
type UpdateDayResponse struct {
	Status   string `json:"status"`
	NewTags  string `json:"new_tags"`
	HasBlog  bool   `json:"has_blog"`
	Snapshot string `json:"snapshot"`
}

// UpdateFootnoteResponse is returned after a footnote save.
type UpdateFootnoteResponse struct {
	Status    string `json:"status"`
	Footnotes string `json:"footnotes"`
}

// handleUpdateDay writes today's score, tags and journal text.
// POST /update
func (s *Server) handleUpdateDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(ctx)

	score, err := parseScore(r.PostFormValue("score"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	log, err := s.services.Day.UpdateDay(ctx, user.ID, service.UpdateDayRequest{
		Date:     r.PostFormValue("date"),
		Score:    score,
		Tags:     r.PostFormValue("tags"),
		HasBlog:  formBool(r, "has_blog"),
		BlogText: r.PostFormValue("blog_text"),
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	snapshot, err := domain.EncodeSnapshot(log.Snapshot)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, UpdateDayResponse{
		Status:   response.StatusSuccess,
		NewTags:  domain.EncodeTagList(log.Tags),
		HasBlog:  log.HasBlog,
		Snapshot: snapshot,
	}, s.logger)
}

// handleUpdateFootnote replaces a day's footnotes. Allowed on every date.
// POST /update_footnote
func (s *Server) handleUpdateFootnote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(ctx)

	text, err := s.services.Day.UpdateFootnote(ctx, user.ID, service.UpdateFootnoteRequest{
		Date:      r.PostFormValue("date"),
		Footnotes: r.PostFormValue("footnotes"),
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, UpdateFootnoteResponse{
		Status:    response.StatusSuccess,
		Footnotes: text,
	}, s.logger)
}

// parseScore reads the score field. A missing score counts as zero.
func parseScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerrors.Validation("Score must be a whole number.")
	}
	return score, nil
}
