package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/gambit/internal/domain/model"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	// Rank returns the leaderboard entry of competitor. Competitors that
	// are unknown or not confidently rated report a not-found error.
	Rank(ctx context.Context, competitor string) (model.LeaderboardEntry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{competitor} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	competitor := strings.TrimPrefix(r.URL.Path, "/rank/")
	if competitor == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	entry, err := h.deps.Rank(r.Context(), competitor)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}
