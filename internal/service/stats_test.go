package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somniaapp/somnia-server/internal/domain"
)

func TestStatsService_FrequencyIsZeroFilled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerUser(t, "alice@example.com", "alice")

	now := time.Now()
	today := now.Format("2006-01-02")
	twoDaysAgo := now.AddDate(0, 0, -2).Format("2006-01-02")

	for _, date := range []string{today, today, twoDaysAgo} {
		_, err := env.dreams.Create(ctx, userID, CreateDreamRequest{
			Date:    date,
			Content: "entry",
		})
		require.NoError(t, err)
	}

	report, err := env.stats.Compute(ctx, domain.StatsScope{OwnerID: userID}, domain.StatsRange7d)
	require.NoError(t, err)

	assert.Equal(t, "self", report.Scope)
	require.Len(t, report.Frequency, 7)

	byDate := make(map[string]int)
	total := 0
	for i, point := range report.Frequency {
		byDate[point.Date] = point.Count
		total += point.Count
		if i > 0 {
			assert.Greater(t, point.Date, report.Frequency[i-1].Date, "series must be oldest first")
		}
	}
	assert.Equal(t, 2, byDate[today])
	assert.Equal(t, 1, byDate[twoDaysAgo])
	assert.Equal(t, 3, total)
	assert.Equal(t, today, report.End)
	assert.Equal(t, report.Frequency[0].Date, report.Start)
}

func TestStatsService_UnparseableDateFallsBackToCreation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerUser(t, "alice@example.com", "alice")

	_, err := env.dreams.Create(ctx, userID, CreateDreamRequest{
		Date:    "last night, maybe 3am",
		Content: "entry",
	})
	require.NoError(t, err)

	report, err := env.stats.Compute(ctx, domain.StatsScope{OwnerID: userID}, domain.StatsRange7d)
	require.NoError(t, err)

	today := time.Now().Format("2006-01-02")
	found := false
	for _, point := range report.Frequency {
		if point.Date == today {
			assert.Equal(t, 1, point.Count)
			found = true
		}
	}
	assert.True(t, found)
}

func TestStatsService_TopTagsWithOtherBucket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerUser(t, "alice@example.com", "alice")

	// Dream i carries tags t01..t(i), so t01 is used 15 times and t15 once.
	tags := make([]string, 0, 15)
	for i := 1; i <= 15; i++ {
		tags = append(tags, fmt.Sprintf("t%02d", i))
		_, err := env.dreams.Create(ctx, userID, CreateDreamRequest{
			Content: "entry",
			Tags:    tags,
		})
		require.NoError(t, err)
	}

	report, err := env.stats.Compute(ctx, domain.StatsScope{OwnerID: userID}, domain.StatsRange30d)
	require.NoError(t, err)

	require.Len(t, report.Tags, 11)
	assert.Equal(t, domain.TagCount{Name: "t01", Value: 15}, report.Tags[0])
	assert.Equal(t, domain.TagCount{Name: "t10", Value: 6}, report.Tags[9])
	// Ranks 11 through 15 collapse: 5+4+3+2+1.
	assert.Equal(t, domain.TagCount{Name: "other", Value: 15}, report.Tags[10])
}

func TestStatsService_TagTiesBreakByName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerUser(t, "alice@example.com", "alice")

	_, err := env.dreams.Create(ctx, userID, CreateDreamRequest{
		Content: "entry",
		Tags:    []string{"zebra", "apple", "mango"},
	})
	require.NoError(t, err)

	report, err := env.stats.Compute(ctx, domain.StatsScope{OwnerID: userID}, domain.StatsRange7d)
	require.NoError(t, err)

	require.Len(t, report.Tags, 3)
	assert.Equal(t, "apple", report.Tags[0].Name)
	assert.Equal(t, "mango", report.Tags[1].Name)
	assert.Equal(t, "zebra", report.Tags[2].Name)
}

func TestStatsService_PublicScopeIgnoresPrivateDreams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com", "alice")
	bob := env.registerUser(t, "bob@example.com", "bob")

	_, err := env.dreams.Create(ctx, alice, CreateDreamRequest{
		Content: "shared", IsPublic: true, Tags: []string{"shared"},
	})
	require.NoError(t, err)
	_, err = env.dreams.Create(ctx, bob, CreateDreamRequest{
		Content: "hidden", Tags: []string{"hidden"},
	})
	require.NoError(t, err)

	report, err := env.stats.Compute(ctx, domain.StatsScope{}, domain.StatsRange7d)
	require.NoError(t, err)

	assert.Equal(t, "public", report.Scope)
	total := 0
	for _, point := range report.Frequency {
		total += point.Count
	}
	assert.Equal(t, 1, total)
	require.Len(t, report.Tags, 1)
	assert.Equal(t, "shared", report.Tags[0].Name)
}

func TestStatsService_RangeLengths(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerUser(t, "alice@example.com", "alice")

	for rng, want := range map[domain.StatsRange]int{
		domain.StatsRange7d:  7,
		domain.StatsRange30d: 30,
		domain.StatsRange1y:  365,
	} {
		report, err := env.stats.Compute(ctx, domain.StatsScope{OwnerID: userID}, rng)
		require.NoError(t, err)
		assert.Len(t, report.Frequency, want, "range %s", rng)

		// An empty journal still yields a full zero-filled series.
		for _, p := range report.Frequency {
			assert.Zero(t, p.Count, "range %s day %s", rng, p.Date)
		}
		assert.Empty(t, report.Tags, "range %s", rng)
	}
}
