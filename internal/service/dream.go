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
	"github.com/somniaapp/somnia-server/internal/search"
	"github.com/somniaapp/somnia-server/internal/store"
	"github.com/somniaapp/somnia-server/internal/store/sqlite"
	"github.com/somniaapp/somnia-server/internal/validation"
)

// DreamService orchestrates journal entries and their tag associations.
type DreamService struct {
	store     *sqlite.Store
	index     *search.Index
	validator *validation.Validator
	logger    *slog.Logger
}

// NewDreamService creates a new dream service.
func NewDreamService(
	store *sqlite.Store,
	index *search.Index,
	validator *validation.Validator,
	logger *slog.Logger,
) *DreamService {
	return &DreamService{
		store:     store,
		index:     index,
		validator: validator,
		logger:    logger,
	}
}

// CreateDreamRequest contains the fields for a new journal entry.
type CreateDreamRequest struct {
	Title    string   `json:"title" validate:"max=200"`
	Date     string   `json:"date" validate:"max=100"`
	Content  string   `json:"content" validate:"required"`
	Tags     []string `json:"tags"`
	IsPublic bool     `json:"is_public"`
}

// UpdateDreamRequest contains the fields for editing an entry.
// IsPublic is a pointer: nil means "leave visibility unchanged".
type UpdateDreamRequest struct {
	Title    string   `json:"title" validate:"max=200"`
	Date     string   `json:"date" validate:"max=100"`
	Content  string   `json:"content" validate:"required"`
	Tags     []string `json:"tags"`
	IsPublic *bool    `json:"is_public,omitempty"`
}

// List returns the owner's dreams, newest effective date first.
// tagFilter narrows to dreams carrying that exact tag name; empty means all.
func (s *DreamService) List(ctx context.Context, ownerID, tagFilter string) ([]*domain.Dream, error) {
	return s.store.ListDreams(ctx, ownerID, tagFilter)
}

// Get returns one of the owner's dreams with its tag set.
func (s *DreamService) Get(ctx context.Context, ownerID, dreamID string) (*domain.Dream, error) {
	dream, err := s.store.GetDreamForOwner(ctx, dreamID, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("dream not found")
		}
		return nil, err
	}
	return dream, nil
}

// Create inserts a new dream and associates its tags.
func (s *DreamService) Create(ctx context.Context, ownerID string, req CreateDreamRequest) (*domain.Dream, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	dreamID, err := id.Generate("dream")
	if err != nil {
		return nil, fmt.Errorf("generate dream ID: %w", err)
	}

	now := time.Now()
	dream := &domain.Dream{
		ID:        dreamID,
		UserID:    ownerID,
		Title:     req.Title,
		Date:      req.Date,
		Content:   req.Content,
		IsPublic:  req.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateDream(ctx, dream); err != nil {
		return nil, fmt.Errorf("create dream: %w", err)
	}

	dream.Tags, err = s.store.ReplaceDreamTags(ctx, dream.ID, req.Tags)
	if err != nil {
		return nil, fmt.Errorf("associate tags: %w", err)
	}

	s.indexDream(dream)

	s.logger.Info("dream created", "dream_id", dream.ID, "user_id", ownerID, "tags", len(dream.Tags))

	return dream, nil
}

// Update edits an owned dream's fields and replaces its tag set.
// Visibility changes only when req.IsPublic is non-nil.
func (s *DreamService) Update(ctx context.Context, ownerID, dreamID string, req UpdateDreamRequest) (*domain.Dream, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	dream, err := s.store.GetDreamForOwner(ctx, dreamID, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("dream not found")
		}
		return nil, err
	}

	dream.Title = req.Title
	dream.Date = req.Date
	dream.Content = req.Content
	if req.IsPublic != nil {
		dream.IsPublic = *req.IsPublic
	}
	dream.Touch()

	if err := s.store.UpdateDream(ctx, dream); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("dream not found")
		}
		return nil, fmt.Errorf("update dream: %w", err)
	}

	dream.Tags, err = s.store.ReplaceDreamTags(ctx, dream.ID, req.Tags)
	if err != nil {
		return nil, fmt.Errorf("replace tags: %w", err)
	}

	s.indexDream(dream)

	return dream, nil
}

// Delete removes an owned dream. Associations cascade and orphaned tags
// are reclaimed by the store.
func (s *DreamService) Delete(ctx context.Context, ownerID, dreamID string) error {
	if err := s.store.DeleteDream(ctx, dreamID, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("dream not found")
		}
		return fmt.Errorf("delete dream: %w", err)
	}

	if err := s.index.DeleteDocument(dreamID); err != nil {
		// The index self-heals on the next rebuild; don't fail the delete.
		s.logger.Warn("failed to remove dream from search index", "dream_id", dreamID, "error", err)
	}

	s.logger.Info("dream deleted", "dream_id", dreamID, "user_id", ownerID)

	return nil
}

// ListPublic returns the public feed with author and social annotations,
// optionally restricted to dreams carrying an exact tag name.
func (s *DreamService) ListPublic(ctx context.Context, tagFilter string) ([]*domain.PublicDream, error) {
	return s.store.ListPublicDreams(ctx, tagFilter)
}

// GetPublic returns a single public dream.
func (s *DreamService) GetPublic(ctx context.Context, dreamID string) (*domain.PublicDream, error) {
	dream, err := s.store.GetPublicDream(ctx, dreamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("dream not found")
		}
		return nil, err
	}
	return dream, nil
}

// ListPublicByUser returns one user's public dreams.
func (s *DreamService) ListPublicByUser(ctx context.Context, userID string) ([]*domain.PublicDream, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	return s.store.ListPublicDreamsByUser(ctx, userID)
}

// Search runs a full-text query over the caller's journal and,
// optionally, everyone's public dreams.
func (s *DreamService) Search(ctx context.Context, ownerID, query string, includePublic bool) (*search.Result, error) {
	if query == "" {
		return nil, domainerrors.Validation("query cannot be empty")
	}

	params := search.DefaultParams()
	params.Query = query
	params.OwnerID = ownerID
	params.IncludePublic = includePublic

	return s.index.Search(ctx, params)
}

// Reindex rebuilds the search index from the store.
// Called on startup when the index was recreated.
func (s *DreamService) Reindex(ctx context.Context) error {
	dreams, err := s.store.ListAllDreams(ctx)
	if err != nil {
		return fmt.Errorf("list dreams: %w", err)
	}

	docs := make([]*search.Document, 0, len(dreams))
	for _, dream := range dreams {
		docs = append(docs, search.DreamToDocument(dream))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index dreams: %w", err)
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))

	return nil
}

// indexDream updates the search index for a dream, logging on failure.
// Index staleness is tolerable; a failed write must not fail the edit.
func (s *DreamService) indexDream(dream *domain.Dream) {
	if err := s.index.IndexDocument(search.DreamToDocument(dream)); err != nil {
		s.logger.Warn("failed to index dream", "dream_id", dream.ID, "error", err)
	}
}
