package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/gambit/internal/domain/model"
)

// HistoryDependencies defines the interface for rating history lookups.
type HistoryDependencies interface {
	History(ctx context.Context, competitor string) ([]model.HistoryPoint, error)
}

// HistoryHandler handles history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetHistory handles GET /history/{competitor} requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	competitor := strings.TrimPrefix(r.URL.Path, "/history/")
	if competitor == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	points, err := h.deps.History(r.Context(), competitor)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	out := make([]historyPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, historyPointResponse{Date: p.Date.String(), Rating: p.Rating})
	}
	writeJSON(w, http.StatusOK, out)
}
