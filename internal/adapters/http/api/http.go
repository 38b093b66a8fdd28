// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/okian/difr/internal/app"
	"github.com/okian/difr/internal/adapters/repository"
	"github.com/okian/difr/internal/domain/types"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Snapshot(ctx context.Context) (*repository.Snapshot, error)

	Leaderboard(ctx context.Context) ([]types.LeaderboardEntry, error)
	Models(ctx context.Context) (types.ModelList, error)
	Providers(ctx context.Context) ([]string, error)
	TrendStats(ctx context.Context, model string) (types.ModelTrends, error)
	TimeSeries(ctx context.Context, model string) (types.ModelSeries, error)
	Results(ctx context.Context, model string) (types.ModelResults, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	stateHandler       *StateHandler
	leaderboardHandler *LeaderboardHandler
	modelsHandler      *ModelsHandler

	metricsEnabled bool
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		stateHandler:       NewStateHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		modelsHandler:      NewModelsHandler(deps),
		metricsEnabled:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	if s.metricsEnabled {
		mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	}
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/state", MetricsMiddleware(s.stateHandler.HandleState, "state"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/models", MetricsMiddleware(s.modelsHandler.HandleGetModels, "models"))
	mux.HandleFunc("/providers", MetricsMiddleware(s.modelsHandler.HandleGetProviders, "providers"))
	mux.HandleFunc("/trends", MetricsMiddleware(s.modelsHandler.HandleGetTrends, "trends"))
	mux.HandleFunc("/timeseries", MetricsMiddleware(s.modelsHandler.HandleGetTimeSeries, "timeseries"))
	mux.HandleFunc("/results", MetricsMiddleware(s.modelsHandler.HandleGetResults, "results"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// stateResponse summarizes the current snapshot.
type stateResponse struct {
	State         string     `json:"state"`
	Version       uint64     `json:"version"`
	RunID         string     `json:"runId,omitempty"`
	Source        string     `json:"source,omitempty"`
	SelectedModel string     `json:"selectedModel,omitempty"`
	Records       int        `json:"records"`
	Listed        int        `json:"listed"`
	Skipped       int        `json:"skipped"`
	Duplicates    int        `json:"duplicates"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
	PublishedAt   time.Time  `json:"publishedAt"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps read-API errors to a status and code.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrLoading):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "loading", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", Wrap(op, err))
	case errors.Is(err, service.ErrModelNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
