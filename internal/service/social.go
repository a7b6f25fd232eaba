package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/somniaapp/somnia-server/internal/domain"
	domainerrors "github.com/somniaapp/somnia-server/internal/errors"
	"github.com/somniaapp/somnia-server/internal/id"
	"github.com/somniaapp/somnia-server/internal/store"
	"github.com/somniaapp/somnia-server/internal/store/sqlite"
)

const maxCommentLength = 2000

// SocialService handles comments and reactions on public dreams.
type SocialService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(store *sqlite.Store, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:  store,
		logger: logger,
	}
}

// ListComments returns a public dream's comments, oldest first.
func (s *SocialService) ListComments(ctx context.Context, dreamID string) ([]*domain.Comment, error) {
	if err := s.requirePublicDream(ctx, dreamID); err != nil {
		return nil, err
	}
	return s.store.ListCommentsForDream(ctx, dreamID)
}

// AddComment posts a comment on a public dream.
func (s *SocialService) AddComment(ctx context.Context, dreamID, userID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domainerrors.Validation("comment cannot be empty")
	}
	if len(content) > maxCommentLength {
		return nil, domainerrors.Validationf("comment cannot exceed %d characters", maxCommentLength)
	}

	if err := s.requirePublicDream(ctx, dreamID); err != nil {
		return nil, err
	}

	commentID, err := id.Generate("comment")
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	comment := &domain.Comment{
		ID:        commentID,
		DreamID:   dreamID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	// Re-read for the joined author username.
	return s.store.GetComment(ctx, comment.ID)
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *SocialService) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("comment not found")
		}
		return err
	}

	if comment.UserID != userID {
		return domainerrors.Forbidden("only the author can delete a comment")
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("comment not found")
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	return nil
}

// ToggleLike flips the caller's like on a public dream.
// Returns the resulting state: true when the like now exists.
func (s *SocialService) ToggleLike(ctx context.Context, dreamID, userID string) (bool, error) {
	if err := s.requirePublicDream(ctx, dreamID); err != nil {
		return false, err
	}

	liked, err := s.store.ToggleReaction(ctx, dreamID, userID, domain.ReactionTypeLike)
	if err != nil {
		return false, fmt.Errorf("toggle reaction: %w", err)
	}
	return liked, nil
}

// LikeCount returns how many users like a public dream, along with
// whether the caller is one of them. userID may be empty for anonymous
// callers.
func (s *SocialService) LikeCount(ctx context.Context, dreamID, userID string) (int, bool, error) {
	if err := s.requirePublicDream(ctx, dreamID); err != nil {
		return 0, false, err
	}

	count, err := s.store.CountReactions(ctx, dreamID, domain.ReactionTypeLike)
	if err != nil {
		return 0, false, fmt.Errorf("count reactions: %w", err)
	}

	liked := false
	if userID != "" {
		liked, err = s.store.HasReaction(ctx, dreamID, userID, domain.ReactionTypeLike)
		if err != nil {
			return 0, false, fmt.Errorf("check reaction: %w", err)
		}
	}

	return count, liked, nil
}

// requirePublicDream fails with NotFound when the dream does not exist
// or is private. Private dreams are indistinguishable from missing ones
// to everyone but their owner.
func (s *SocialService) requirePublicDream(ctx context.Context, dreamID string) error {
	if _, err := s.store.GetPublicDream(ctx, dreamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("dream not found")
		}
		return err
	}
	return nil
}
