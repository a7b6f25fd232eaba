package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/somniaapp/somnia-server/internal/domain"
	domainerrors "github.com/somniaapp/somnia-server/internal/errors"
	"github.com/somniaapp/somnia-server/internal/id"
	"github.com/somniaapp/somnia-server/internal/store"
	"github.com/somniaapp/somnia-server/internal/store/sqlite"
)

// TagService exposes the tag vocabulary.
type TagService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *sqlite.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// List returns every tag with its usage count, sorted by name.
func (s *TagService) List(ctx context.Context) ([]*domain.TagUsage, error) {
	return s.store.ListTagsWithUsage(ctx)
}

// Create explicitly creates a tag. Unlike the find-or-create path used
// when saving dreams, a name collision here is reported to the caller.
func (s *TagService) Create(ctx context.Context, name string) (*domain.Tag, error) {
	normalized := sqlite.NormalizeTagNames([]string{name})
	if len(normalized) == 0 {
		return nil, domainerrors.Validation("tag name cannot be empty")
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	tag := &domain.Tag{
		ID:        tagID,
		Name:      normalized[0],
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateTag(ctx, tag); err != nil {
		var se *store.Error
		if errors.As(err, &se) && se.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflict("tag already exists")
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name)

	return tag, nil
}
