// Package service runs the single ingestion pass and serves the aggregate
// views to the HTTP API, the MCP tools, and the CLI report.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/difr/internal/adapters/repository"
	"github.com/okian/difr/internal/adapters/source"
	"github.com/okian/difr/internal/config"
	"github.com/okian/difr/internal/domain/model"
	"github.com/okian/difr/internal/domain/types"
	"github.com/okian/difr/internal/ingest"
	"github.com/okian/difr/pkg/logger"
)

// Service owns the snapshot store and the background ingestion run.
type Service struct {
	mu sync.RWMutex

	src   source.Source
	store repository.Store

	// Configuration
	fetchConcurrency int
	fetchTimeout     time.Duration
	dedupeSize       int
	fallback         func() []model.AuditResult

	// State
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service. Without WithSource it reads the public GitHub listing.
func New(opts ...Option) *Service {
	s := &Service{
		fetchConcurrency: 8,
		fetchTimeout:     30 * time.Second,
		dedupeSize:       10_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = source.NewGitHub(config.DefaultListingURL)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start publishes a Loading snapshot and runs one ingestion in the
// background. Calling Start again is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.store.Publish(ctx, repository.Loading(time.Now()))

	opts := []ingest.Option{
		ingest.WithConcurrency(s.fetchConcurrency),
		ingest.WithTimeout(s.fetchTimeout),
		ingest.WithDedupeSize(s.dedupeSize),
		ingest.WithLogger(s.logger.Named("ingest")),
	}
	if s.fallback != nil {
		opts = append(opts, ingest.WithFallback(s.fallback))
	}
	orch := ingest.New(s.src, opts...)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		out := orch.Run(runCtx)
		s.store.Publish(runCtx, repository.Build(out))
	}()

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.String("source", s.src.Name()),
		logger.Int("fetchConcurrency", s.fetchConcurrency),
		logger.Duration("fetchTimeout", s.fetchTimeout),
	)
	return nil
}

// Stop cancels an unfinished ingestion and waits for it to publish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.started = false
	s.logger.Info(context.Background(), "service stopped")
}

// Wait blocks until the ingestion reaches Ready or Fallback.
func (s *Service) Wait(ctx context.Context) (*repository.Snapshot, error) {
	for {
		changed := s.store.Changed()
		snap, err := s.store.Current(ctx)
		if err != nil {
			return nil, ErrNotStarted
		}
		if snap.State().Terminal() {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-changed:
		}
	}
}

// Snapshot returns the current snapshot, whatever its state.
func (s *Service) Snapshot(ctx context.Context) (*repository.Snapshot, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, ErrNotStarted
	}
	return snap, nil
}

// ready returns the snapshot once ingestion is over.
func (s *Service) ready(ctx context.Context) (*repository.Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.State().Terminal() {
		return nil, ErrLoading
	}
	return snap, nil
}

// resolve picks modelID, or the selected model when it is empty.
func (s *Service) resolve(ctx context.Context, modelID string) (*repository.Snapshot, string, error) {
	snap, err := s.ready(ctx)
	if err != nil {
		return nil, "", err
	}
	if modelID == "" {
		modelID = snap.Outcome.SelectedModel
	}
	if !snap.HasModel(modelID) {
		return nil, "", fmt.Errorf("%w: %q", ErrModelNotFound, modelID)
	}
	return snap, modelID, nil
}

// Leaderboard returns the corpus-wide provider ranking.
func (s *Service) Leaderboard(ctx context.Context) ([]types.LeaderboardEntry, error) {
	snap, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Leaderboard, nil
}

// Models lists the models in first-seen order with the initial selection.
func (s *Service) Models(ctx context.Context) (types.ModelList, error) {
	snap, err := s.ready(ctx)
	if err != nil {
		return types.ModelList{}, err
	}
	return types.ModelList{Models: snap.Models, Selected: snap.Outcome.SelectedModel}, nil
}

// Providers lists every provider name seen in the corpus.
func (s *Service) Providers(ctx context.Context) ([]string, error) {
	snap, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Providers, nil
}

// TrendStats returns per-provider stats for one model.
func (s *Service) TrendStats(ctx context.Context, modelID string) (types.ModelTrends, error) {
	snap, id, err := s.resolve(ctx, modelID)
	if err != nil {
		return types.ModelTrends{}, err
	}
	return types.ModelTrends{Model: id, Stats: snap.TrendStats(id)}, nil
}

// TimeSeries returns the wide time series for one model.
func (s *Service) TimeSeries(ctx context.Context, modelID string) (types.ModelSeries, error) {
	snap, id, err := s.resolve(ctx, modelID)
	if err != nil {
		return types.ModelSeries{}, err
	}
	return types.ModelSeries{Model: id, Providers: snap.Providers, Points: snap.TimeSeries(id)}, nil
}

// Results returns the raw audit results for one model.
func (s *Service) Results(ctx context.Context, modelID string) (types.ModelResults, error) {
	snap, id, err := s.resolve(ctx, modelID)
	if err != nil {
		return types.ModelResults{}, err
	}
	return types.ModelResults{Model: id, Results: snap.Results(id)}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]any{
		"started":          started,
		"source":           s.src.Name(),
		"fetchConcurrency": s.fetchConcurrency,
		"fetchTimeout":     s.fetchTimeout.String(),
	}

	snap, err := s.store.Current(context.Background())
	if err != nil {
		return stats
	}
	out := snap.Outcome
	stats["state"] = out.State.String()
	stats["snapshotVersion"] = snap.Version
	if out.State.Terminal() {
		stats["runId"] = out.RunID
		stats["records"] = len(out.Results)
		stats["models"] = len(snap.Models)
		stats["providers"] = len(snap.Providers)
		stats["listed"] = out.Listed
		stats["skipped"] = out.Skipped
		stats["duplicates"] = out.Duplicates
		stats["durationMs"] = out.Duration().Milliseconds()
		if out.Err != nil {
			stats["fallbackReason"] = out.Err.Error()
		}
	}
	return stats
}
