package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/grimoireapp/grimoire-server/internal/http/response"
	"github.com/grimoireapp/grimoire-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "reorderTags",
		Method:      http.MethodPost,
		Path:        "/reorder_tags",
		Summary:     "Reorder tags",
		Description: "Ranks the listed tags first to last. Unknown names are ignored.",
		Tags:        []string{"Tags"},
	}, s.handleReorderTags)
}

// === DTOs ===

// TagsResponse carries the active tag registry after a change.
type TagsResponse struct {
	Status   string         `json:"status" doc:"Always success"`
	TagsData service.TagSet `json:"tags_data" doc:"Active tags keyed by name"`
}

// ReorderTagsRequest is the request body for reordering tags.
type ReorderTagsRequest struct {
	Tags      []string `json:"tags" maxItems:"500" doc:"Tag names, highest priority first"`
	CSRFToken string   `json:"csrf_token,omitempty" doc:"Alternative to the X-CSRF-Token header"`
}

// ReorderTagsInput wraps the reorder request for Huma.
type ReorderTagsInput struct {
	Body ReorderTagsRequest
}

// TagsOutput wraps the tags response for Huma.
type TagsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         TagsResponse
}

// === Handlers ===

func (s *Server) handleReorderTags(ctx context.Context, input *ReorderTagsInput) (*TagsOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.Reorder(ctx, user.ID, input.Body.Tags)
	if err != nil {
		return nil, err
	}

	return &TagsOutput{
		CacheControl: CacheNoStore,
		Body:         TagsResponse{Status: response.StatusSuccess, TagsData: tags},
	}, nil
}

// handleAddTag creates or reactivates a tag.
// POST /add_tag
func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	tags, err := s.services.Tag.Add(r.Context(), user.ID, r.PostFormValue("name"))
	s.writeTags(w, tags, err)
}

// handleUpdateTagColor recolors a tag.
// POST /update_tag_color
func (s *Server) handleUpdateTagColor(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	tags, err := s.services.Tag.Recolor(r.Context(), user.ID, r.PostFormValue("name"), r.PostFormValue("color"))
	s.writeTags(w, tags, err)
}

// handleDeleteTag soft-deletes a tag.
// POST /delete_tag
func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	tags, err := s.services.Tag.Delete(r.Context(), user.ID, r.PostFormValue("name"))
	s.writeTags(w, tags, err)
}

func (s *Server) writeTags(w http.ResponseWriter, tags service.TagSet, err error) {
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, TagsResponse{Status: response.StatusSuccess, TagsData: tags}, s.logger)
}
