package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/somniaapp/somnia-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Journal statistics",
		Description: "Returns the caller's dream frequency and tag distribution over a lookback window",
		Tags:        []string{"Statistics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed/stats",
		Summary:     "Public feed statistics",
		Description: "Returns activity statistics over all public dreams",
		Tags:        []string{"Statistics"},
	}, s.handleGetPublicStats)
}

// === DTOs ===

// GetStatsInput contains parameters for the caller's statistics.
type GetStatsInput struct {
	Authorization string `header:"Authorization"`
	Range         string `query:"range" doc:"Lookback window; unknown values fall back to 7d"`
}

// GetPublicStatsInput contains parameters for public statistics.
type GetPublicStatsInput struct {
	Range string `query:"range" doc:"Lookback window; unknown values fall back to 7d"`
}

// ActivityPoint is one day in the frequency series.
type ActivityPoint struct {
	Date  string `json:"date" doc:"Calendar day (YYYY-MM-DD)"`
	Count int    `json:"count" doc:"Dreams recorded that day"`
}

// TagCount is one entry in the tag distribution.
type TagCount struct {
	Name  string `json:"name" doc:"Tag name, or \"other\" for the collapsed remainder"`
	Value int    `json:"value" doc:"Usage count within the window"`
}

// StatsResponse is a complete activity report.
type StatsResponse struct {
	Scope     string          `json:"scope" doc:"\"self\" or \"public\""`
	Range     string          `json:"range" doc:"Resolved lookback window"`
	Start     string          `json:"start" doc:"First day of the window (YYYY-MM-DD)"`
	End       string          `json:"end" doc:"Last day of the window (YYYY-MM-DD)"`
	Frequency []ActivityPoint `json:"frequency" doc:"One point per day, oldest first"`
	Tags      []TagCount      `json:"tags" doc:"Top tags by usage, plus an \"other\" remainder"`
}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body StatsResponse
}

// === Handlers ===

func (s *Server) handleGetMyStats(ctx context.Context, input *GetStatsInput) (*StatsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Stats.Compute(ctx,
		domain.StatsScope{OwnerID: userID},
		domain.ParseStatsRange(input.Range),
	)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: mapStatsResponse(report)}, nil
}

func (s *Server) handleGetPublicStats(ctx context.Context, input *GetPublicStatsInput) (*StatsOutput, error) {
	report, err := s.services.Stats.Compute(ctx,
		domain.StatsScope{},
		domain.ParseStatsRange(input.Range),
	)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: mapStatsResponse(report)}, nil
}

func mapStatsResponse(report *domain.StatsReport) StatsResponse {
	frequency := make([]ActivityPoint, len(report.Frequency))
	for i, p := range report.Frequency {
		frequency[i] = ActivityPoint{Date: p.Date, Count: p.Count}
	}

	tags := make([]TagCount, len(report.Tags))
	for i, t := range report.Tags {
		tags[i] = TagCount{Name: t.Name, Value: t.Value}
	}

	return StatsResponse{
		Scope:     report.Scope,
		Range:     string(report.Range),
		Start:     report.Start,
		End:       report.End,
		Frequency: frequency,
		Tags:      tags,
	}
}
