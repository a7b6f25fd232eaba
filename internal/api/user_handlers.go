package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the caller's own account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Changes the caller's username",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadAvatar",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me/avatar",
		Summary:     "Upload avatar",
		Description: "Uploads a profile image (JPEG, PNG, GIF or WebP)",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: MaxAvatarUploadSize,
	}, s.handleUploadAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAvatar",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me/avatar",
		Summary:     "Delete avatar",
		Description: "Removes the caller's profile image",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get public profile",
		Description: "Returns another user's public profile",
		Tags:        []string{"Users"},
	}, s.handleGetPublicProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserDreams",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/dreams",
		Summary:     "List a user's public dreams",
		Description: "Returns one user's public dreams, newest first",
		Tags:        []string{"Users"},
	}, s.handleListUserDreams)

	// Avatar bytes stream through chi directly, not huma.
	s.router.Get("/api/v1/users/{id}/avatar", s.handleServeAvatar)
}

// === DTOs ===

// GetCurrentUserInput contains parameters for fetching the caller.
type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// ProfileResponse contains the caller's full account data.
type ProfileResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	Username  string    `json:"username" doc:"Public username"`
	AvatarURL string    `json:"avatar_url,omitempty" doc:"Avatar URL when set"`
	CreatedAt time.Time `json:"created_at" doc:"Account creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ProfileOutput wraps the profile for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// MeResponse is the caller's account with journal totals.
type MeResponse struct {
	ProfileResponse
	DreamCount       int `json:"dream_count" doc:"Total dreams in the journal"`
	PublicDreamCount int `json:"public_dream_count" doc:"Dreams published to the feed"`
}

// MeOutput wraps the caller's account for Huma.
type MeOutput struct {
	Body MeResponse
}

// UpdateProfileRequest is the request body for profile edits.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum" doc:"New username"`
}

// UpdateProfileInput wraps the profile edit for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

// UploadAvatarInput carries raw image bytes.
type UploadAvatarInput struct {
	Authorization string `header:"Authorization"`
	RawBody       []byte
}

// PublicProfileResponse is the subset of a profile visible to other users.
type PublicProfileResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Username  string    `json:"username" doc:"Public username"`
	AvatarURL string    `json:"avatar_url,omitempty" doc:"Avatar URL when set"`
	CreatedAt time.Time `json:"created_at" doc:"Account creation time"`
}

// PublicProfileOutput wraps a public profile for Huma.
type PublicProfileOutput struct {
	Body PublicProfileResponse
}

// GetPublicProfileInput contains parameters for fetching a profile.
type GetPublicProfileInput struct {
	ID string `path:"id" doc:"User ID"`
}

// ListUserDreamsInput contains parameters for a user's public dreams.
type ListUserDreamsInput struct {
	ID string `path:"id" doc:"User ID"`
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*MeOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Profile.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &MeOutput{Body: MeResponse{
		ProfileResponse:  mapProfileResponse(overview.User),
		DreamCount:       overview.DreamCount,
		PublicDreamCount: overview.PublicDreamCount,
	}}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Profile.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Username: input.Body.Username,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(user)}, nil
}

func (s *Server) handleUploadAvatar(ctx context.Context, input *UploadAvatarInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Profile.UploadAvatar(ctx, userID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(user)}, nil
}

// DeleteAvatarInput contains parameters for avatar removal.
type DeleteAvatarInput struct {
	Authorization string `header:"Authorization"`
}

func (s *Server) handleDeleteAvatar(ctx context.Context, input *DeleteAvatarInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Profile.DeleteAvatar(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(user)}, nil
}

func (s *Server) handleGetPublicProfile(ctx context.Context, input *GetPublicProfileInput) (*PublicProfileOutput, error) {
	profile, err := s.services.Profile.GetPublicProfile(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PublicProfileOutput{
		Body: PublicProfileResponse{
			ID:        profile.ID,
			Username:  profile.Username,
			AvatarURL: profile.AvatarURL,
			CreatedAt: profile.CreatedAt,
		},
	}, nil
}

func (s *Server) handleListUserDreams(ctx context.Context, input *ListUserDreamsInput) (*FeedOutput, error) {
	dreams, err := s.services.Dream.ListPublicByUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]PublicDreamResponse, len(dreams))
	for i, d := range dreams {
		resp[i] = mapPublicDreamResponse(d)
	}

	return &FeedOutput{Body: FeedResponse{Dreams: resp}}, nil
}

// handleServeAvatar streams avatar bytes with long-lived caching.
func (s *Server) handleServeAvatar(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	data, err := s.avatars.Get(userID)
	if err != nil {
		http.Error(w, "avatar not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheOneDay)
	_, _ = w.Write(data)
}

func mapProfileResponse(user *domain.User) ProfileResponse {
	resp := ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.AvatarPath != "" {
		resp.AvatarURL = "/api/v1/users/" + user.ID + "/avatar"
	}
	return resp
}
