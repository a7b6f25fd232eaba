package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/somniaapp/somnia-server/internal/domain"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed/{id}/comments",
		Summary:     "List comments",
		Description: "Returns a public dream's comments, oldest first",
		Tags:        []string{"Social"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "addComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/feed/{id}/comments",
		Summary:     "Add comment",
		Description: "Posts a comment on a public dream",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete comment",
		Description: "Deletes a comment; only its author may do this",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/feed/{id}/like",
		Summary:     "Toggle like",
		Description: "Likes a public dream, or removes the caller's existing like",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLikes",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed/{id}/likes",
		Summary:     "Get likes",
		Description: "Returns a public dream's like count and whether the caller likes it",
		Tags:        []string{"Social"},
	}, s.handleGetLikes)
}

// === DTOs ===

// CommentResponse contains comment data in API responses.
type CommentResponse struct {
	ID             string    `json:"id" doc:"Comment ID"`
	DreamID        string    `json:"dream_id" doc:"Dream ID"`
	AuthorID       string    `json:"author_id" doc:"Author's user ID"`
	AuthorUsername string    `json:"author_username" doc:"Author's username"`
	Content        string    `json:"content" doc:"Comment text"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation time"`
}

// ListCommentsInput contains parameters for listing comments.
type ListCommentsInput struct {
	ID string `path:"id" doc:"Dream ID"`
}

// ListCommentsResponse contains a dream's comments.
type ListCommentsResponse struct {
	Comments []CommentResponse `json:"comments" doc:"Comments, oldest first"`
}

// ListCommentsOutput wraps the comment list for Huma.
type ListCommentsOutput struct {
	Body ListCommentsResponse
}

// AddCommentRequest is the request body for posting a comment.
type AddCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000" doc:"Comment text"`
}

// AddCommentInput wraps the comment request for Huma.
type AddCommentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Dream ID"`
	Body          AddCommentRequest
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// DeleteCommentInput contains parameters for deleting a comment.
type DeleteCommentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Comment ID"`
}

// ToggleLikeInput contains parameters for toggling a like.
type ToggleLikeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Dream ID"`
}

// LikeStateResponse reports the like state after a toggle or lookup.
type LikeStateResponse struct {
	Likes int  `json:"likes" doc:"Total like count"`
	Liked bool `json:"liked" doc:"Whether the caller currently likes the dream"`
}

// LikeStateOutput wraps the like state for Huma.
type LikeStateOutput struct {
	Body LikeStateResponse
}

// GetLikesInput contains parameters for reading like state.
type GetLikesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Dream ID"`
}

// === Handlers ===

func (s *Server) handleListComments(ctx context.Context, input *ListCommentsInput) (*ListCommentsOutput, error) {
	comments, err := s.services.Social.ListComments(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]CommentResponse, len(comments))
	for i, c := range comments {
		resp[i] = mapCommentResponse(c)
	}

	return &ListCommentsOutput{Body: ListCommentsResponse{Comments: resp}}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Social.AddComment(ctx, input.ID, userID, input.Body.Content)
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: mapCommentResponse(comment)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *DeleteCommentInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.DeleteComment(ctx, input.ID, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Comment deleted"}}, nil
}

func (s *Server) handleToggleLike(ctx context.Context, input *ToggleLikeInput) (*LikeStateOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	liked, err := s.services.Social.ToggleLike(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	count, _, err := s.services.Social.LikeCount(ctx, input.ID, "")
	if err != nil {
		return nil, err
	}

	return &LikeStateOutput{Body: LikeStateResponse{Likes: count, Liked: liked}}, nil
}

func (s *Server) handleGetLikes(ctx context.Context, input *GetLikesInput) (*LikeStateOutput, error) {
	userID := s.optionalAuthenticate(ctx, input.Authorization)

	count, liked, err := s.services.Social.LikeCount(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &LikeStateOutput{Body: LikeStateResponse{Likes: count, Liked: liked}}, nil
}

func mapCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:             c.ID,
		DreamID:        c.DreamID,
		AuthorID:       c.UserID,
		AuthorUsername: c.AuthorUsername,
		Content:        c.Content,
		CreatedAt:      c.CreatedAt,
	}
}
