package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/service"
)

func (s *Server) registerDreamRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listDreams",
		Method:      http.MethodGet,
		Path:        "/api/v1/dreams",
		Summary:     "List dreams",
		Description: "Returns the caller's dreams, newest first, optionally filtered by tag",
		Tags:        []string{"Dreams"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListDreams)

	huma.Register(s.api, huma.Operation{
		OperationID: "createDream",
		Method:      http.MethodPost,
		Path:        "/api/v1/dreams",
		Summary:     "Create dream",
		Description: "Creates a new journal entry with its tags",
		Tags:        []string{"Dreams"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateDream)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDream",
		Method:      http.MethodGet,
		Path:        "/api/v1/dreams/{id}",
		Summary:     "Get dream",
		Description: "Returns one of the caller's dreams",
		Tags:        []string{"Dreams"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetDream)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateDream",
		Method:      http.MethodPatch,
		Path:        "/api/v1/dreams/{id}",
		Summary:     "Update dream",
		Description: "Edits a dream and replaces its tag set",
		Tags:        []string{"Dreams"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateDream)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteDream",
		Method:      http.MethodDelete,
		Path:        "/api/v1/dreams/{id}",
		Summary:     "Delete dream",
		Description: "Deletes a dream; tags left without dreams are removed",
		Tags:        []string{"Dreams"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteDream)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchDreams",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search dreams",
		Description: "Full-text search over the caller's journal, optionally including everyone's public dreams",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchDreams)
}

// === DTOs ===

// DreamResponse contains dream data in API responses.
type DreamResponse struct {
	ID        string    `json:"id" doc:"Dream ID"`
	Title     string    `json:"title,omitempty" doc:"Optional title"`
	Date      string    `json:"date,omitempty" doc:"Free-text date as entered"`
	Content   string    `json:"content" doc:"Dream narrative"`
	Tags      []string  `json:"tags" doc:"Tag names, sorted"`
	IsPublic  bool      `json:"is_public" doc:"Whether the dream is shared publicly"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListDreamsInput contains parameters for listing dreams.
type ListDreamsInput struct {
	Authorization string `header:"Authorization"`
	Tag           string `query:"tag" doc:"Exact tag name to filter by"`
}

// ListDreamsResponse contains a list of dreams.
type ListDreamsResponse struct {
	Dreams []DreamResponse `json:"dreams" doc:"List of dreams"`
}

// ListDreamsOutput wraps the dream list for Huma.
type ListDreamsOutput struct {
	Body ListDreamsResponse
}

// CreateDreamRequest is the request body for creating a dream.
type CreateDreamRequest struct {
	Title    string   `json:"title,omitempty" validate:"omitempty,max=200" doc:"Optional title"`
	Date     string   `json:"date,omitempty" validate:"omitempty,max=100" doc:"Free-text date (YYYY-MM-DD prefix is used for ordering)"`
	Content  string   `json:"content" validate:"required" doc:"Dream narrative"`
	Tags     []string `json:"tags,omitempty" doc:"Tag names"`
	IsPublic bool     `json:"is_public,omitempty" doc:"Share publicly"`
}

// CreateDreamInput wraps the create request for Huma.
type CreateDreamInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateDreamRequest
}

// DreamOutput wraps a single dream for Huma.
type DreamOutput struct {
	Body DreamResponse
}

// GetDreamInput contains parameters for fetching a dream.
type GetDreamInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Dream ID"`
}

// UpdateDreamRequest is the request body for editing a dream.
// Omitting is_public leaves the current visibility unchanged.
type UpdateDreamRequest struct {
	Title    string   `json:"title,omitempty" validate:"omitempty,max=200" doc:"Optional title"`
	Date     string   `json:"date,omitempty" validate:"omitempty,max=100" doc:"Free-text date"`
	Content  string   `json:"content" validate:"required" doc:"Dream narrative"`
	Tags     []string `json:"tags,omitempty" doc:"Replacement tag set"`
	IsPublic *bool    `json:"is_public,omitempty" doc:"Share publicly; omit to keep current visibility"`
}

// UpdateDreamInput wraps the update request for Huma.
type UpdateDreamInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Dream ID"`
	Body          UpdateDreamRequest
}

// DeleteDreamInput contains parameters for deleting a dream.
type DeleteDreamInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Dream ID"`
}

// SearchInput contains full-text search parameters.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query"`
	IncludePublic bool   `query:"include_public" doc:"Also search everyone's public dreams"`
}

// SearchHit is one search result.
type SearchHit struct {
	ID         string              `json:"id" doc:"Dream ID"`
	Score      float64             `json:"score" doc:"Relevance score"`
	Title      string              `json:"title,omitempty" doc:"Dream title"`
	Content    string              `json:"content,omitempty" doc:"Dream content"`
	Tags       []string            `json:"tags,omitempty" doc:"Tag names"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted fragment per field"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string      `json:"query" doc:"The query as executed"`
	Total  uint64      `json:"total" doc:"Total matching dreams"`
	TookMs int64       `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHit `json:"hits" doc:"Matching dreams"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleListDreams(ctx context.Context, input *ListDreamsInput) (*ListDreamsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	dreams, err := s.services.Dream.List(ctx, userID, input.Tag)
	if err != nil {
		return nil, err
	}

	resp := make([]DreamResponse, len(dreams))
	for i, d := range dreams {
		resp[i] = mapDreamResponse(d)
	}

	return &ListDreamsOutput{Body: ListDreamsResponse{Dreams: resp}}, nil
}

func (s *Server) handleCreateDream(ctx context.Context, input *CreateDreamInput) (*DreamOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	dream, err := s.services.Dream.Create(ctx, userID, service.CreateDreamRequest{
		Title:    input.Body.Title,
		Date:     input.Body.Date,
		Content:  input.Body.Content,
		Tags:     input.Body.Tags,
		IsPublic: input.Body.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	return &DreamOutput{Body: mapDreamResponse(dream)}, nil
}

func (s *Server) handleGetDream(ctx context.Context, input *GetDreamInput) (*DreamOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	dream, err := s.services.Dream.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &DreamOutput{Body: mapDreamResponse(dream)}, nil
}

func (s *Server) handleUpdateDream(ctx context.Context, input *UpdateDreamInput) (*DreamOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	dream, err := s.services.Dream.Update(ctx, userID, input.ID, service.UpdateDreamRequest{
		Title:    input.Body.Title,
		Date:     input.Body.Date,
		Content:  input.Body.Content,
		Tags:     input.Body.Tags,
		IsPublic: input.Body.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	return &DreamOutput{Body: mapDreamResponse(dream)}, nil
}

func (s *Server) handleDeleteDream(ctx context.Context, input *DeleteDreamInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Dream.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Dream deleted"}}, nil
}

func (s *Server) handleSearchDreams(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Dream.Search(ctx, userID, input.Query, input.IncludePublic)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHit{
			ID:         h.ID,
			Score:      h.Score,
			Title:      h.Title,
			Content:    h.Content,
			Tags:       h.Tags,
			Highlights: h.Highlights,
		}
	}

	return &SearchOutput{
		Body: SearchResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
		},
	}, nil
}

func mapDreamResponse(d *domain.Dream) DreamResponse {
	return DreamResponse{
		ID:        d.ID,
		Title:     d.Title,
		Date:      d.Date,
		Content:   d.Content,
		Tags:      d.Tags,
		IsPublic:  d.IsPublic,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
