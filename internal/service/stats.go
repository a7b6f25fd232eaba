package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/somniaapp/somnia-server/internal/domain"
	"github.com/somniaapp/somnia-server/internal/store/sqlite"
)

// topTagCount is how many named tags appear in the distribution before
// the remainder collapses into a single "other" entry.
const topTagCount = 10

const dayFormat = "2006-01-02"

// StatsService computes date-bucketed activity reports.
type StatsService struct {
	store  *sqlite.Store
	logger *slog.Logger

	// now is swappable in tests so window bounds are deterministic.
	now func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(store *sqlite.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Compute builds the full report for a scope and lookback window.
// The frequency series is contiguous: every day in the window appears,
// zero count or not, oldest first.
func (s *StatsService) Compute(ctx context.Context, scope domain.StatsScope, rng domain.StatsRange) (*domain.StatsReport, error) {
	start, end := rng.Bounds(s.now())

	frequency, err := s.dreamFrequency(ctx, scope, start, end)
	if err != nil {
		return nil, fmt.Errorf("dream frequency: %w", err)
	}

	tags, err := s.tagDistribution(ctx, scope, start, end)
	if err != nil {
		return nil, fmt.Errorf("tag distribution: %w", err)
	}

	scopeName := "self"
	if scope.Public() {
		scopeName = "public"
	}

	return &domain.StatsReport{
		Scope:     scopeName,
		Range:     rng,
		Start:     start.Format(dayFormat),
		End:       end.Format(dayFormat),
		Frequency: frequency,
		Tags:      tags,
	}, nil
}

func (s *StatsService) dreamFrequency(ctx context.Context, scope domain.StatsScope, start, end time.Time) ([]domain.ActivityPoint, error) {
	rows, err := s.store.DreamActivity(ctx, scope)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, row := range rows {
		day, ok := effectiveDay(row.Date, row.CreatedAt, start, end)
		if !ok {
			continue
		}
		counts[day]++
	}

	// Zero-fill so charts always get a point per day.
	points := make([]domain.ActivityPoint, 0, end.Sub(start)/(24*time.Hour)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayFormat)
		points = append(points, domain.ActivityPoint{
			Date:  key,
			Count: counts[key],
		})
	}

	return points, nil
}

func (s *StatsService) tagDistribution(ctx context.Context, scope domain.StatsScope, start, end time.Time) ([]domain.TagCount, error) {
	rows, err := s.store.TagActivity(ctx, scope)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, row := range rows {
		if _, ok := effectiveDay(row.Date, row.CreatedAt, start, end); !ok {
			continue
		}
		counts[row.TagName]++
	}

	tags := make([]domain.TagCount, 0, len(counts))
	for name, count := range counts {
		tags = append(tags, domain.TagCount{Name: name, Value: count})
	}
	slices.SortFunc(tags, func(a, b domain.TagCount) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if len(tags) > topTagCount {
		other := 0
		for _, tc := range tags[topTagCount:] {
			other += tc.Value
		}
		tags = tags[:topTagCount]
		if other > 0 {
			tags = append(tags, domain.TagCount{Name: "other", Value: other})
		}
	}

	return tags, nil
}

// effectiveDay resolves a dream's activity day and reports whether it
// falls inside [start, end]. The free-text date wins when it parses;
// otherwise the creation timestamp's local day is used.
func effectiveDay(date string, createdAt time.Time, start, end time.Time) (string, bool) {
	day, ok := domain.ParseEntryDate(date)
	if !ok {
		c := createdAt.In(start.Location())
		day = time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, start.Location())
	}
	if day.Before(start) || day.After(end) {
		return "", false
	}
	return day.Format(dayFormat), true
}
