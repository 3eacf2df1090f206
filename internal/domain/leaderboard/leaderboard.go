// Package leaderboard ranks the final rating states and renders the
// leaderboard and history views.
package leaderboard

import (
	"cmp"
	"slices"

	"github.com/okian/gambit/internal/domain/model"
	"github.com/okian/gambit/pkg/metrics"
)

// DefaultThreshold is the deviation cutoff used when none is configured.
const DefaultThreshold = 200.0

// Build returns the competitors whose deviation is strictly below threshold,
// ordered by rating descending. Equal ratings are ordered by name so the
// output does not depend on map iteration. Ranks start at 1. states is not
// modified.
func Build(states map[string]model.RatingState, threshold float64) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(states))
	for name, st := range states {
		if !(st.Deviation < threshold) {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			Competitor: name,
			Rating:     st.Rating,
			Deviation:  st.Deviation,
		})
	}

	slices.SortFunc(entries, func(a, b model.LeaderboardEntry) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.Competitor, b.Competitor)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	metrics.UpdateLeaderboardEntries(len(entries))
	return entries
}
