package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/somniaapp/somnia-server/internal/domain"
	domainerrors "github.com/somniaapp/somnia-server/internal/errors"
	"github.com/somniaapp/somnia-server/internal/media/images"
	"github.com/somniaapp/somnia-server/internal/store"
	"github.com/somniaapp/somnia-server/internal/store/sqlite"
	"github.com/somniaapp/somnia-server/internal/validation"
)

// ProfileService manages account profiles and avatars.
type ProfileService struct {
	store     *sqlite.Store
	avatars   *images.Processor
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(
	store *sqlite.Store,
	avatars *images.Processor,
	validator *validation.Validator,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		store:     store,
		avatars:   avatars,
		validator: validator,
		logger:    logger,
	}
}

// UpdateProfileRequest contains the editable profile fields.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
}

// ProfileOverview is the caller's own account with journal totals.
type ProfileOverview struct {
	User             *domain.User
	DreamCount       int
	PublicDreamCount int
}

// Me returns the caller's own account, password hash stripped.
func (s *ProfileService) Me(ctx context.Context, userID string) (*ProfileOverview, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}

	total, public, err := s.store.CountDreamsForOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	u := *user
	u.PasswordHash = ""
	return &ProfileOverview{
		User:             &u,
		DreamCount:       total,
		PublicDreamCount: public,
	}, nil
}

// UpdateProfile changes the caller's username.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}

	user.Username = req.Username
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		var se *store.Error
		if errors.As(err, &se) && se.Code == store.ErrAlreadyExists.Code {
			return nil, domainerrors.Conflict(se.Message)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID, "username", user.Username)

	user.PasswordHash = ""
	return user, nil
}

// UploadAvatar processes an uploaded image and stores it as the
// caller's avatar. Returns the updated user.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, imageData []byte) (*domain.User, error) {
	if len(imageData) == 0 {
		return nil, domainerrors.Validation("avatar image cannot be empty")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}

	if _, err := s.avatars.Process(userID, imageData); err != nil {
		return nil, domainerrors.Validation("unsupported or corrupt image").WithCause(err)
	}

	user.AvatarPath = userID + ".jpg"
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("avatar uploaded", "user_id", userID)

	user.PasswordHash = ""
	return user, nil
}

// DeleteAvatar removes the caller's avatar image and clears the
// avatar path. Deleting when no avatar is set is a no-op.
func (s *ProfileService) DeleteAvatar(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}

	if user.AvatarPath == "" {
		user.PasswordHash = ""
		return user, nil
	}

	if err := s.avatars.Storage().Delete(userID); err != nil {
		s.logger.Warn("avatar file removal failed", "user_id", userID, "error", err)
	}

	user.AvatarPath = ""
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("avatar deleted", "user_id", userID)

	user.PasswordHash = ""
	return user, nil
}

// Avatar returns the stored avatar bytes for a user.
func (s *ProfileService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	if user.AvatarPath == "" {
		return nil, domainerrors.NotFound("user has no avatar")
	}

	data, err := s.avatars.Storage().Get(userID)
	if err != nil {
		return nil, domainerrors.NotFound("avatar not found").WithCause(err)
	}
	return data, nil
}

// GetPublicProfile returns another user's public view, with an avatar
// URL when one is set.
func (s *ProfileService) GetPublicProfile(ctx context.Context, userID string) (*domain.PublicProfile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}

	profile := user.PublicProfile()
	if user.AvatarPath != "" {
		profile.AvatarURL = "/api/v1/users/" + user.ID + "/avatar"
	}
	return &profile, nil
}
