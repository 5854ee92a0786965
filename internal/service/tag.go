package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/grimoireapp/grimoire-server/internal/domain"
	domainerrors "github.com/grimoireapp/grimoire-server/internal/errors"
	"github.com/grimoireapp/grimoire-server/internal/metrics"
	"github.com/grimoireapp/grimoire-server/internal/store"
)

// TagService manages a user's tag registry. Every mutation returns the resulting active set.
type TagService struct {
	store   store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, metrics *metrics.Metrics, logger *slog.Logger) *TagService {
	return &TagService{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// TagSet is the active registry keyed by tag name.
type TagSet = domain.TagSnapshot

// List returns the user's active tags.
func (s *TagService) List(ctx context.Context, userID int64) (TagSet, error) {
	tags, err := s.store.ListActiveTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return domain.SnapshotOf(tags), nil
}

// Add creates a tag or reactivates a deleted one. The tag moves to the bottom of the order.
func (s *TagService) Add(ctx context.Context, userID int64, rawName string) (TagSet, error) {
	name, err := domain.SanitizeTagName(rawName)
	if err != nil {
		return nil, err
	}

	tag, err := s.store.UpsertTag(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("add tag: %w", err)
	}

	s.metrics.TagMutations.WithLabelValues("add").Inc()
	s.logger.Info("tag added", "user_id", userID, "tag", tag.Name, "priority", tag.Priority)
	return s.List(ctx, userID)
}

// Recolor sets a tag's color. Deleted tags can be recolored too.
func (s *TagService) Recolor(ctx context.Context, userID int64, rawName, rawColor string) (TagSet, error) {
	name, err := domain.SanitizeTagName(rawName)
	if err != nil {
		return nil, err
	}
	color, err := domain.NormalizeHexColor(rawColor)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetTagColor(ctx, userID, name, color); err != nil {
		return nil, tagError(err, "recolor tag")
	}

	s.metrics.TagMutations.WithLabelValues("recolor").Inc()
	s.logger.Info("tag recolored", "user_id", userID, "tag", name, "color", color)
	return s.List(ctx, userID)
}

// Reorder ranks the named tags first-to-last. Unknown and repeated names are ignored;
// active tags left out keep their priority.
func (s *TagService) Reorder(ctx context.Context, userID int64, rawNames []string) (TagSet, error) {
	current, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	ordered := make([]string, 0, len(rawNames))
	seen := make(map[string]bool, len(rawNames))
	for _, raw := range rawNames {
		name, err := domain.SanitizeTagName(raw)
		if err != nil || seen[name] {
			continue
		}
		if _, ok := current[name]; !ok {
			continue
		}
		seen[name] = true
		ordered = append(ordered, name)
	}

	priorities := make(map[string]int, len(ordered))
	for i, name := range ordered {
		priorities[name] = len(ordered) - i
	}
	if err := s.store.SetTagPriorities(ctx, userID, priorities); err != nil {
		return nil, fmt.Errorf("reorder tags: %w", err)
	}

	s.metrics.TagMutations.WithLabelValues("reorder").Inc()
	s.logger.Info("tags reordered", "user_id", userID, "count", len(ordered))
	return s.List(ctx, userID)
}

// Delete hides a tag from the registry. Days that used it keep it in their snapshots.
func (s *TagService) Delete(ctx context.Context, userID int64, rawName string) (TagSet, error) {
	name, err := domain.SanitizeTagName(rawName)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeactivateTag(ctx, userID, name); err != nil {
		return nil, tagError(err, "delete tag")
	}

	s.metrics.TagMutations.WithLabelValues("delete").Inc()
	s.logger.Info("tag deleted", "user_id", userID, "tag", name)
	return s.List(ctx, userID)
}

func tagError(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("Tag not found.").WithCause(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
