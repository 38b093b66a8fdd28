package repository

import (
	"time"

	"github.com/okian/difr/internal/domain/aggregate"
	"github.com/okian/difr/internal/domain/model"
	"github.com/okian/difr/internal/domain/types"
	"github.com/okian/difr/internal/ingest"
	"github.com/okian/difr/pkg/metrics"
)

// Snapshot is an immutable view of one ingestion outcome plus everything
// derived from it. Readers share it without locking.
type Snapshot struct {
	Version     uint64
	PublishedAt time.Time

	Outcome ingest.Outcome

	Models      []string
	Providers   []string
	Leaderboard []types.LeaderboardEntry

	trends  map[string][]types.ProviderTrendStat
	series  map[string][]types.TimeSeriesPoint
	byModel map[string][]model.AuditResult
}

// Loading returns the snapshot published before a run finishes.
func Loading(runStarted time.Time) *Snapshot {
	return &Snapshot{Outcome: ingest.Outcome{State: ingest.Loading, StartedAt: runStarted}}
}

// Build derives every read shape from out. Per-model trend stats and time
// series are computed up front; the corpus is small and fixed per run.
func Build(out ingest.Outcome) *Snapshot {
	s := &Snapshot{
		Outcome:   out,
		Models:    aggregate.Models(out.Results),
		Providers: aggregate.ProviderNames(out.Results),
		trends:    make(map[string][]types.ProviderTrendStat),
		series:    make(map[string][]types.TimeSeriesPoint),
		byModel:   make(map[string][]model.AuditResult),
	}

	s.Leaderboard = timed("leaderboard", func() []types.LeaderboardEntry {
		return aggregate.BuildLeaderboard(out.Results)
	})
	for _, m := range s.Models {
		s.byModel[m] = aggregate.FilterModel(out.Results, m)
		s.trends[m] = timed("trend_stats", func() []types.ProviderTrendStat {
			return aggregate.BuildTrendStats(out.Results, m)
		})
		s.series[m] = timed("time_series", func() []types.TimeSeriesPoint {
			return aggregate.BuildTimeSeries(out.Results, m, s.Providers)
		})
	}
	return s
}

func timed[T any](builder string, f func() T) T {
	start := time.Now()
	v := f()
	metrics.RecordAggregationLatency(builder, float64(time.Since(start).Microseconds())/1000)
	return v
}

// State is the ingestion state the snapshot reflects.
func (s *Snapshot) State() ingest.State { return s.Outcome.State }

// HasModel reports whether the corpus contains modelID.
func (s *Snapshot) HasModel(modelID string) bool {
	_, ok := s.byModel[modelID]
	return ok
}

// TrendStats returns the precomputed stats for modelID.
func (s *Snapshot) TrendStats(modelID string) []types.ProviderTrendStat {
	return s.trends[modelID]
}

// TimeSeries returns the precomputed series for modelID.
func (s *Snapshot) TimeSeries(modelID string) []types.TimeSeriesPoint {
	return s.series[modelID]
}

// Results returns the raw results for modelID in corpus order.
func (s *Snapshot) Results(modelID string) []model.AuditResult {
	return s.byModel[modelID]
}
