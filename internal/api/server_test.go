package api

import (
	"bytes"
	"encoding/json/v2"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somniaapp/somnia-server/internal/auth"
	"github.com/somniaapp/somnia-server/internal/config"
	"github.com/somniaapp/somnia-server/internal/media/images"
	"github.com/somniaapp/somnia-server/internal/search"
	"github.com/somniaapp/somnia-server/internal/service"
	"github.com/somniaapp/somnia-server/internal/store/sqlite"
	"github.com/somniaapp/somnia-server/internal/validation"
)

type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer wires the full stack against a temp directory.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.NewIndex(search.Options{
		DataPath: filepath.Join(dir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	storage, err := images.NewStorage(dir)
	require.NoError(t, err)

	attachmentStorage, err := images.NewStorageWithSubdir(dir, "attachments")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(make([]byte, 32), time.Hour)
	require.NoError(t, err)

	v := validation.New()

	services := &Services{
		Auth:       service.NewAuthService(st, tokens, v, logger),
		Dream:      service.NewDreamService(st, idx, v, logger),
		Tag:        service.NewTagService(st, logger),
		Stats:      service.NewStatsService(st, logger),
		Social:     service.NewSocialService(st, logger),
		Profile:    service.NewProfileService(st, images.NewProcessor(storage, logger), v, logger),
		Attachment: service.NewAttachmentService(st, images.NewProcessor(attachmentStorage, logger), logger),
	}

	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigin: "http://localhost:5173"},
	}

	s := NewServer(cfg, services, storage, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// registerTestUser registers through the API and returns a bearer token.
func (ts *testServer) registerTestUser(t *testing.T, email, username string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"username": username,
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.AccessToken, body.User.ID
}

func decodeBody[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

// === Tests ===

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", body.Status)
}

func TestAuthFlow(t *testing.T) {
	ts := setupTestServer(t)

	token, userID := ts.registerTestUser(t, "alice@example.com", "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	me := decodeBody[ProfileResponse](t, resp.Body.Bytes())
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "alice", me.Username)

	// Bad credentials are a 401.
	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDreamLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice@example.com", "alice")

	resp := ts.api.Post("/api/v1/dreams", "Authorization: Bearer "+token, map[string]any{
		"title":   "Flight",
		"date":    "2026-08-29",
		"content": "Soaring over rooftops.",
		"tags":    []string{"flying", "lucid"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	created := decodeBody[DreamResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{"flying", "lucid"}, created.Tags)

	// Tag filter matches exactly.
	resp = ts.api.Get("/api/v1/dreams?tag=flying", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeBody[ListDreamsResponse](t, resp.Body.Bytes())
	require.Len(t, list.Dreams, 1)

	resp = ts.api.Get("/api/v1/dreams?tag=fly", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	list = decodeBody[ListDreamsResponse](t, resp.Body.Bytes())
	assert.Empty(t, list.Dreams)

	// Update without is_public keeps the dream private.
	resp = ts.api.Patch("/api/v1/dreams/"+created.ID, "Authorization: Bearer "+token, map[string]any{
		"content": "Soaring higher.",
		"tags":    []string{"flying"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	updated := decodeBody[DreamResponse](t, resp.Body.Bytes())
	assert.False(t, updated.IsPublic)
	assert.Equal(t, []string{"flying"}, updated.Tags)

	resp = ts.api.Delete("/api/v1/dreams/"+created.ID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/dreams/"+created.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDreamsRequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/dreams")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/dreams", map[string]any{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestStatsEndpointDefaultsRange(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice@example.com", "alice")

	resp := ts.api.Post("/api/v1/dreams", "Authorization: Bearer "+token, map[string]any{
		"content": "entry",
		"tags":    []string{"water"},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	// Unknown range values silently fall back to 7d.
	resp = ts.api.Get("/api/v1/stats?range=bogus", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	stats := decodeBody[StatsResponse](t, resp.Body.Bytes())
	assert.Equal(t, "7d", stats.Range)
	assert.Equal(t, "self", stats.Scope)
	assert.Len(t, stats.Frequency, 7)
	require.Len(t, stats.Tags, 1)
	assert.Equal(t, "water", stats.Tags[0].Name)

	resp = ts.api.Get("/api/v1/stats?range=30d", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	stats = decodeBody[StatsResponse](t, resp.Body.Bytes())
	assert.Len(t, stats.Frequency, 30)
}

func TestPublicFeedAndSocial(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.registerTestUser(t, "alice@example.com", "alice")
	bobToken, _ := ts.registerTestUser(t, "bob@example.com", "bob")

	resp := ts.api.Post("/api/v1/dreams", "Authorization: Bearer "+aliceToken, map[string]any{
		"content":   "A shared dream.",
		"is_public": true,
		"tags":      []string{"flying"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	dream := decodeBody[DreamResponse](t, resp.Body.Bytes())

	// Feed is readable without auth.
	resp = ts.api.Get("/api/v1/feed")
	require.Equal(t, http.StatusOK, resp.Code)
	feed := decodeBody[FeedResponse](t, resp.Body.Bytes())
	require.Len(t, feed.Dreams, 1)
	assert.Equal(t, "alice", feed.Dreams[0].AuthorUsername)

	resp = ts.api.Get("/api/v1/feed?tag=flying")
	require.Equal(t, http.StatusOK, resp.Code)
	feed = decodeBody[FeedResponse](t, resp.Body.Bytes())
	require.Len(t, feed.Dreams, 1)

	resp = ts.api.Get("/api/v1/feed?tag=water")
	require.Equal(t, http.StatusOK, resp.Code)
	feed = decodeBody[FeedResponse](t, resp.Body.Bytes())
	assert.Empty(t, feed.Dreams)

	// Bob comments and likes.
	resp = ts.api.Post("/api/v1/feed/"+dream.ID+"/comments", "Authorization: Bearer "+bobToken, map[string]any{
		"content": "Beautiful!",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	comment := decodeBody[CommentResponse](t, resp.Body.Bytes())
	assert.Equal(t, "bob", comment.AuthorUsername)

	resp = ts.api.Post("/api/v1/feed/"+dream.ID+"/like", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)
	likes := decodeBody[LikeStateResponse](t, resp.Body.Bytes())
	assert.Equal(t, 1, likes.Likes)
	assert.True(t, likes.Liked)

	// Alice cannot delete Bob's comment.
	resp = ts.api.Delete("/api/v1/comments/"+comment.ID, "Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/comments/"+comment.ID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestPrivateDreamHiddenFromFeed(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice@example.com", "alice")

	resp := ts.api.Post("/api/v1/dreams", "Authorization: Bearer "+token, map[string]any{
		"content": "Private thoughts.",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	dream := decodeBody[DreamResponse](t, resp.Body.Bytes())

	resp = ts.api.Get("/api/v1/feed/" + dream.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/feed/" + dream.ID + "/comments")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t)

	// Burst is 5 per IP; the sixth rapid attempt is rejected.
	var lastCode int
	for i := 0; i < 6; i++ {
		resp := ts.api.Post("/api/v1/auth/login",
			"X-Real-IP: 203.0.113.9",
			map[string]any{
				"email":    "alice@example.com",
				"password": "hunter2hunter2",
			})
		lastCode = resp.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)

	// Other IPs are unaffected.
	resp := ts.api.Post("/api/v1/auth/login",
		"X-Real-IP: 203.0.113.10",
		map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
		})
	assert.NotEqual(t, http.StatusTooManyRequests, resp.Code)
}

func TestAttachmentFlow(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.registerTestUser(t, "alice@example.com", "alice")
	bobToken, _ := ts.registerTestUser(t, "bob@example.com", "bob")

	resp := ts.api.Post("/api/v1/dreams", "Authorization: Bearer "+aliceToken, map[string]any{
		"content": "A vivid dream worth illustrating.",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	dream := decodeBody[DreamResponse](t, resp.Body.Bytes())

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	resp = ts.api.Post("/api/v1/dreams/"+dream.ID+"/attachments",
		"Authorization: Bearer "+aliceToken,
		"Content-Type: application/octet-stream",
		bytes.NewReader(buf.Bytes()))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	attachment := decodeBody[AttachmentResponse](t, resp.Body.Bytes())
	assert.Equal(t, dream.ID, attachment.DreamID)

	resp = ts.api.Get("/api/v1/dreams/"+dream.ID+"/attachments", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeBody[ListAttachmentsResponse](t, resp.Body.Bytes())
	require.Len(t, list.Attachments, 1)

	// The file rides the dream's visibility: hidden while private.
	fileReq := httptest.NewRequest(http.MethodGet, attachment.URL, nil)
	fileRec := httptest.NewRecorder()
	ts.ServeHTTP(fileRec, fileReq)
	assert.Equal(t, http.StatusNotFound, fileRec.Code)

	fileReq = httptest.NewRequest(http.MethodGet, attachment.URL, nil)
	fileReq.Header.Set("Authorization", "Bearer "+aliceToken)
	fileRec = httptest.NewRecorder()
	ts.ServeHTTP(fileRec, fileReq)
	assert.Equal(t, http.StatusOK, fileRec.Code)
	assert.Equal(t, "image/jpeg", fileRec.Header().Get("Content-Type"))

	resp = ts.api.Patch("/api/v1/dreams/"+dream.ID, "Authorization: Bearer "+aliceToken, map[string]any{
		"content":   "A vivid dream worth illustrating.",
		"is_public": true,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	fileReq = httptest.NewRequest(http.MethodGet, attachment.URL, nil)
	fileRec = httptest.NewRecorder()
	ts.ServeHTTP(fileRec, fileReq)
	assert.Equal(t, http.StatusOK, fileRec.Code)

	// Only the owner can remove it.
	resp = ts.api.Delete("/api/v1/attachments/"+attachment.ID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/attachments/"+attachment.ID, "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/dreams/"+dream.ID+"/attachments", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)
	list = decodeBody[ListAttachmentsResponse](t, resp.Body.Bytes())
	assert.Empty(t, list.Attachments)
}
