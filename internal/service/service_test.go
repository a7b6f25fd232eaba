package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/somniaapp/somnia-server/internal/auth"
	"github.com/somniaapp/somnia-server/internal/media/images"
	"github.com/somniaapp/somnia-server/internal/search"
	"github.com/somniaapp/somnia-server/internal/store/sqlite"
	"github.com/somniaapp/somnia-server/internal/validation"
)

// testEnv wires every service against a real temp-dir store and index.
type testEnv struct {
	store    *sqlite.Store
	index    *search.Index
	auth        *AuthService
	dreams      *DreamService
	tags        *TagService
	stats       *StatsService
	social      *SocialService
	profiles    *ProfileService
	attachments *AttachmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	dir := t.TempDir()

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

	return &testEnv{
		store:       st,
		index:       idx,
		auth:        NewAuthService(st, tokens, v, logger),
		dreams:      NewDreamService(st, idx, v, logger),
		tags:        NewTagService(st, logger),
		stats:       NewStatsService(st, logger),
		social:      NewSocialService(st, logger),
		profiles:    NewProfileService(st, images.NewProcessor(storage, logger), v, logger),
		attachments: NewAttachmentService(st, images.NewProcessor(attachmentStorage, logger), logger),
	}
}

// registerUser creates a real account through the auth service.
func (e *testEnv) registerUser(t *testing.T, email, username string) string {
	t.Helper()

	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Username: username,
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	return resp.User.ID
}
