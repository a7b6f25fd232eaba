package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/somniaapp/somnia-server/internal/errors"
)

func TestTagService_ListWithUsage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerUser(t, "alice@example.com", "alice")

	_, err := env.dreams.Create(ctx, userID, CreateDreamRequest{Content: "a", Tags: []string{"water", "lucid"}})
	require.NoError(t, err)
	_, err = env.dreams.Create(ctx, userID, CreateDreamRequest{Content: "b", Tags: []string{"water"}})
	require.NoError(t, err)

	tags, err := env.tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	// Most used first.
	assert.Equal(t, "water", tags[0].Name)
	assert.Equal(t, 2, tags[0].UsageCount)
	assert.Equal(t, "lucid", tags[1].Name)
	assert.Equal(t, 1, tags[1].UsageCount)
}

func TestTagService_CreateExplicit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag, err := env.tags.Create(ctx, "  recurring ")
	require.NoError(t, err)
	assert.Equal(t, "recurring", tag.Name)

	_, err = env.tags.Create(ctx, "recurring")
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	_, err = env.tags.Create(ctx, "   ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
