package api

import (
	"context"
	"net/http"

	"github.com/okian/difr/internal/adapters/repository"
)

// StateDependencies exposes the current snapshot.
type StateDependencies interface {
	Snapshot(ctx context.Context) (*repository.Snapshot, error)
}

// StateHandler reports ingestion progress. It answers 200 in every state so
// pollers can watch Loading turn into Ready or Fallback.
type StateHandler struct {
	deps StateDependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps StateDependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleState handles GET /state requests.
func (h *StateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_state"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	out := snap.Outcome
	resp := stateResponse{
		State:         out.State.String(),
		Version:       snap.Version,
		RunID:         out.RunID,
		Source:        out.Source,
		SelectedModel: out.SelectedModel,
		Records:       len(out.Results),
		Listed:        out.Listed,
		Skipped:       out.Skipped,
		Duplicates:    out.Duplicates,
		StartedAt:     out.StartedAt,
		PublishedAt:   snap.PublishedAt,
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	if !out.FinishedAt.IsZero() {
		finished := out.FinishedAt
		resp.FinishedAt = &finished
	}
	writeJSON(w, http.StatusOK, resp)
}
