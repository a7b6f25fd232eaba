package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somniaapp/somnia-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(Options{
		DataPath: t.TempDir(),
		Logger:   nil,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func TestNewIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexDocument(t *testing.T) {
	index := setupTestIndex(t)

	doc := &Document{
		ID:         "dream-123",
		OwnerID:    "user-1",
		Title:      "Flying over the city",
		Content:    "I was soaring above rooftops",
		Visibility: visibilityPrivate,
	}

	require.NoError(t, index.IndexDocument(doc))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_TextMatch(t *testing.T) {
	index := setupTestIndex(t)

	docs := []*Document{
		{ID: "dream-1", OwnerID: "user-1", Title: "Flying over mountains", Content: "wings and wind", Visibility: visibilityPrivate},
		{ID: "dream-2", OwnerID: "user-1", Title: "Underwater palace", Content: "swimming with whales", Visibility: visibilityPrivate},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultParams()
	params.Query = "flying"
	params.OwnerID = "user-1"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "dream-1", result.Hits[0].ID)
}

func TestSearch_ScopeFilter(t *testing.T) {
	index := setupTestIndex(t)

	docs := []*Document{
		{ID: "dream-mine", OwnerID: "user-1", Content: "a recurring nightmare", Visibility: visibilityPrivate},
		{ID: "dream-theirs-private", OwnerID: "user-2", Content: "a recurring dream of rain", Visibility: visibilityPrivate},
		{ID: "dream-theirs-public", OwnerID: "user-2", Content: "a recurring dream of snow", Visibility: visibilityPublic},
	}
	require.NoError(t, index.IndexDocuments(docs))

	// Own journal only.
	params := DefaultParams()
	params.Query = "recurring"
	params.OwnerID = "user-1"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "dream-mine", result.Hits[0].ID)

	// Own journal plus public dreams; the other user's private dream
	// must stay invisible.
	params.IncludePublic = true
	result, err = index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	for _, hit := range result.Hits {
		assert.NotEqual(t, "dream-theirs-private", hit.ID)
	}
}

func TestSearch_TagFilter(t *testing.T) {
	index := setupTestIndex(t)

	docs := []*Document{
		{ID: "dream-1", OwnerID: "user-1", Content: "night sky", Tags: []string{"lucid", "flying"}, Visibility: visibilityPrivate},
		{ID: "dream-2", OwnerID: "user-1", Content: "night train", Tags: []string{"travel"}, Visibility: visibilityPrivate},
	}
	require.NoError(t, index.IndexDocuments(docs))

	params := DefaultParams()
	params.OwnerID = "user-1"
	params.Tag = "lucid"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "dream-1", result.Hits[0].ID)
}

func TestDeleteDocument(t *testing.T) {
	index := setupTestIndex(t)

	doc := &Document{ID: "dream-1", OwnerID: "user-1", Content: "fading", Visibility: visibilityPrivate}
	require.NoError(t, index.IndexDocument(doc))
	require.NoError(t, index.DeleteDocument("dream-1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestDreamToDocument(t *testing.T) {
	now := time.Now()
	dream := &domain.Dream{
		ID:        "dream-1",
		UserID:    "user-1",
		Title:     "The library",
		Content:   "endless shelves",
		IsPublic:  true,
		Tags:      []string{"books"},
		CreatedAt: now,
	}

	doc := DreamToDocument(dream)
	assert.Equal(t, "dream-1", doc.ID)
	assert.Equal(t, "user-1", doc.OwnerID)
	assert.Equal(t, visibilityPublic, doc.Visibility)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)
}
