package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/somniaapp/somnia-server/internal/domain"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicDreams",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Public feed",
		Description: "Returns public dreams, newest first, with author and social counts; optionally filtered by tag",
		Tags:        []string{"Feed"},
	}, s.handleListPublicDreams)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicDream",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed/{id}",
		Summary:     "Get public dream",
		Description: "Returns a single public dream",
		Tags:        []string{"Feed"},
	}, s.handleGetPublicDream)
}

// === DTOs ===

// PublicDreamResponse is a dream as seen on the public feed.
type PublicDreamResponse struct {
	DreamResponse
	AuthorID       string `json:"author_id" doc:"Author's user ID"`
	AuthorUsername string `json:"author_username" doc:"Author's username"`
	Likes          int    `json:"likes" doc:"Like count"`
	Comments       int    `json:"comments" doc:"Comment count"`
}

// FeedResponse contains the public feed.
type FeedResponse struct {
	Dreams []PublicDreamResponse `json:"dreams" doc:"Public dreams"`
}

// FeedOutput wraps the feed for Huma.
type FeedOutput struct {
	Body FeedResponse
}

// ListFeedInput contains optional filters for the public feed.
type ListFeedInput struct {
	Tag string `query:"tag" doc:"Filter by exact tag name"`
}

// GetPublicDreamInput contains parameters for fetching a public dream.
type GetPublicDreamInput struct {
	ID string `path:"id" doc:"Dream ID"`
}

// PublicDreamOutput wraps a public dream for Huma.
type PublicDreamOutput struct {
	Body PublicDreamResponse
}

// === Handlers ===

func (s *Server) handleListPublicDreams(ctx context.Context, input *ListFeedInput) (*FeedOutput, error) {
	dreams, err := s.services.Dream.ListPublic(ctx, input.Tag)
	if err != nil {
		return nil, err
	}

	resp := make([]PublicDreamResponse, len(dreams))
	for i, d := range dreams {
		resp[i] = mapPublicDreamResponse(d)
	}

	return &FeedOutput{Body: FeedResponse{Dreams: resp}}, nil
}

func (s *Server) handleGetPublicDream(ctx context.Context, input *GetPublicDreamInput) (*PublicDreamOutput, error) {
	dream, err := s.services.Dream.GetPublic(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PublicDreamOutput{Body: mapPublicDreamResponse(dream)}, nil
}

func mapPublicDreamResponse(d *domain.PublicDream) PublicDreamResponse {
	return PublicDreamResponse{
		DreamResponse:  mapDreamResponse(&d.Dream),
		AuthorID:       d.UserID,
		AuthorUsername: d.AuthorUsername,
		Likes:          d.Likes,
		Comments:       d.Comments,
	}
}
