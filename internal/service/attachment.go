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
	"github.com/somniaapp/somnia-server/internal/media/images"
	"github.com/somniaapp/somnia-server/internal/store"
	"github.com/somniaapp/somnia-server/internal/store/sqlite"
)

// AttachmentService manages images attached to dreams. Files live next
// to avatars under the data directory; rows cascade with the dream.
type AttachmentService struct {
	store  *sqlite.Store
	images *images.Processor
	logger *slog.Logger
}

// NewAttachmentService creates a new attachment service.
func NewAttachmentService(store *sqlite.Store, processor *images.Processor, logger *slog.Logger) *AttachmentService {
	return &AttachmentService{
		store:  store,
		images: processor,
		logger: logger,
	}
}

// Add processes an uploaded image and attaches it to one of the
// caller's dreams.
func (s *AttachmentService) Add(ctx context.Context, ownerID, dreamID string, imageData []byte) (*domain.Attachment, error) {
	if len(imageData) == 0 {
		return nil, domainerrors.Validation("attachment image cannot be empty")
	}

	if _, err := s.store.GetDreamForOwner(ctx, dreamID, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("dream not found")
		}
		return nil, err
	}

	attachmentID, err := id.Generate("att")
	if err != nil {
		return nil, fmt.Errorf("generate attachment ID: %w", err)
	}

	if _, err := s.images.Process(attachmentID, imageData); err != nil {
		return nil, domainerrors.Validation("unsupported or corrupt image").WithCause(err)
	}

	attachment := &domain.Attachment{
		ID:        attachmentID,
		DreamID:   dreamID,
		FilePath:  attachmentID + ".jpg",
		MimeType:  "image/jpeg",
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateAttachment(ctx, attachment); err != nil {
		if derr := s.images.Storage().Delete(attachmentID); derr != nil {
			s.logger.Warn("attachment file cleanup failed", "attachment_id", attachmentID, "error", derr)
		}
		return nil, fmt.Errorf("create attachment: %w", err)
	}

	s.logger.Info("attachment added", "attachment_id", attachmentID, "dream_id", dreamID)

	return attachment, nil
}

// List returns the attachments on one of the caller's dreams, oldest first.
func (s *AttachmentService) List(ctx context.Context, ownerID, dreamID string) ([]*domain.Attachment, error) {
	if _, err := s.store.GetDreamForOwner(ctx, dreamID, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("dream not found")
		}
		return nil, err
	}
	return s.store.ListAttachmentsForDream(ctx, dreamID)
}

// Delete removes an attachment from one of the caller's dreams. The
// stored file goes too; a failed file removal is logged, not surfaced.
func (s *AttachmentService) Delete(ctx context.Context, ownerID, attachmentID string) error {
	attachment, err := s.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("attachment not found")
		}
		return err
	}

	if _, err := s.store.GetDreamForOwner(ctx, attachment.DreamID, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("attachment not found")
		}
		return err
	}

	if err := s.store.DeleteAttachment(ctx, attachmentID); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}

	if err := s.images.Storage().Delete(attachmentID); err != nil {
		s.logger.Warn("attachment file removal failed", "attachment_id", attachmentID, "error", err)
	}

	return nil
}

// File returns the stored image bytes for an attachment. Attachments on
// public dreams are visible to anyone; private ones only to the owner
// (viewerID may be empty for anonymous requests).
func (s *AttachmentService) File(ctx context.Context, attachmentID, viewerID string) ([]byte, error) {
	attachment, err := s.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("attachment not found")
		}
		return nil, err
	}

	dream, err := s.store.GetDream(ctx, attachment.DreamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("attachment not found")
		}
		return nil, err
	}

	if !dream.IsPublic && dream.UserID != viewerID {
		return nil, domainerrors.NotFound("attachment not found")
	}

	data, err := s.images.Storage().Get(attachment.ID)
	if err != nil {
		return nil, domainerrors.NotFound("attachment file not found").WithCause(err)
	}
	return data, nil
}
