package api

import (
	"context"
	"net/http"

	"github.com/okian/difr/internal/domain/types"
)

// ModelsDependencies defines the per-model read operations.
type ModelsDependencies interface {
	Models(ctx context.Context) (types.ModelList, error)
	Providers(ctx context.Context) ([]string, error)
	TrendStats(ctx context.Context, model string) (types.ModelTrends, error)
	TimeSeries(ctx context.Context, model string) (types.ModelSeries, error)
	Results(ctx context.Context, model string) (types.ModelResults, error)
}

// ModelsHandler serves the model list and per-model views. An absent
// ?model= selects the snapshot's selected model.
type ModelsHandler struct {
	deps ModelsDependencies
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(deps ModelsDependencies) *ModelsHandler {
	return &ModelsHandler{deps: deps}
}

// HandleGetModels handles GET /models.
func (h *ModelsHandler) HandleGetModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	list, err := h.deps.Models(r.Context())
	if err != nil {
		writeServiceError(w, "api.get_models", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGetProviders handles GET /providers.
func (h *ModelsHandler) HandleGetProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	providers, err := h.deps.Providers(r.Context())
	if err != nil {
		writeServiceError(w, "api.get_providers", err)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

// HandleGetTrends handles GET /trends?model=.
func (h *ModelsHandler) HandleGetTrends(w http.ResponseWriter, r *http.Request) {
	serveModelView(w, r, "api.get_trends", h.deps.TrendStats)
}

// HandleGetTimeSeries handles GET /timeseries?model=.
func (h *ModelsHandler) HandleGetTimeSeries(w http.ResponseWriter, r *http.Request) {
	serveModelView(w, r, "api.get_timeseries", h.deps.TimeSeries)
}

// HandleGetResults handles GET /results?model=.
func (h *ModelsHandler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	serveModelView(w, r, "api.get_results", h.deps.Results)
}

func serveModelView[T any](w http.ResponseWriter, r *http.Request, op string,
	get func(context.Context, string) (T, error),
) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	v, err := get(r.Context(), r.URL.Query().Get("model"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
