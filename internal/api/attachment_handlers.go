package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/somniaapp/somnia-server/internal/domain"
)

func (s *Server) registerAttachmentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAttachments",
		Method:      http.MethodGet,
		Path:        "/api/v1/dreams/{id}/attachments",
		Summary:     "List dream attachments",
		Description: "Returns the images attached to one of the caller's dreams",
		Tags:        []string{"Attachments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAttachments)

	huma.Register(s.api, huma.Operation{
		OperationID: "addAttachment",
		Method:      http.MethodPost,
		Path:        "/api/v1/dreams/{id}/attachments",
		Summary:     "Attach image",
		Description: "Uploads an image (JPEG, PNG, GIF or WebP) and attaches it to a dream",
		Tags:        []string{"Attachments"},
		Security:    []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: MaxAttachmentUploadSize,
	}, s.handleAddAttachment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAttachment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/attachments/{id}",
		Summary:     "Delete attachment",
		Description: "Removes an image from one of the caller's dreams",
		Tags:        []string{"Attachments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAttachment)

	// Image bytes stream through chi directly, not huma.
	s.router.Get("/api/v1/attachments/{id}/file", s.handleServeAttachment)
}

// === DTOs ===

// AttachmentResponse describes one image attached to a dream.
type AttachmentResponse struct {
	ID        string    `json:"id" doc:"Attachment ID"`
	DreamID   string    `json:"dream_id" doc:"Owning dream ID"`
	MimeType  string    `json:"mime_type" doc:"Stored content type"`
	URL       string    `json:"url" doc:"Image URL"`
	CreatedAt time.Time `json:"created_at" doc:"Upload time"`
}

// AttachmentOutput wraps a single attachment for Huma.
type AttachmentOutput struct {
	Body AttachmentResponse
}

// ListAttachmentsResponse contains a dream's attachments.
type ListAttachmentsResponse struct {
	Attachments []AttachmentResponse `json:"attachments"`
}

// ListAttachmentsOutput wraps an attachment listing for Huma.
type ListAttachmentsOutput struct {
	Body ListAttachmentsResponse
}

// ListAttachmentsInput contains parameters for listing attachments.
type ListAttachmentsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Dream ID"`
}

// AddAttachmentInput carries raw image bytes for a dream.
type AddAttachmentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Dream ID"`
	RawBody       []byte
}

// DeleteAttachmentInput contains parameters for attachment removal.
type DeleteAttachmentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Attachment ID"`
}

// === Handlers ===

func (s *Server) handleListAttachments(ctx context.Context, input *ListAttachmentsInput) (*ListAttachmentsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	attachments, err := s.services.Attachment.List(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]AttachmentResponse, len(attachments))
	for i, a := range attachments {
		resp[i] = mapAttachmentResponse(a)
	}

	return &ListAttachmentsOutput{Body: ListAttachmentsResponse{Attachments: resp}}, nil
}

func (s *Server) handleAddAttachment(ctx context.Context, input *AddAttachmentInput) (*AttachmentOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	attachment, err := s.services.Attachment.Add(ctx, userID, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &AttachmentOutput{Body: mapAttachmentResponse(attachment)}, nil
}

func (s *Server) handleDeleteAttachment(ctx context.Context, input *DeleteAttachmentInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Attachment.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Attachment deleted"}}, nil
}

// handleServeAttachment streams attachment bytes. Attachments inherit
// their dream's visibility, so the viewer is resolved when a token is
// supplied.
func (s *Server) handleServeAttachment(w http.ResponseWriter, r *http.Request) {
	attachmentID := chi.URLParam(r, "id")
	viewerID := s.optionalAuthenticate(r.Context(), r.Header.Get("Authorization"))

	data, err := s.services.Attachment.File(r.Context(), attachmentID, viewerID)
	if err != nil {
		http.Error(w, "attachment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheNoStore)
	_, _ = w.Write(data)
}

func mapAttachmentResponse(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:        a.ID,
		DreamID:   a.DreamID,
		MimeType:  a.MimeType,
		URL:       "/api/v1/attachments/" + a.ID + "/file",
		CreatedAt: a.CreatedAt,
	}
}
