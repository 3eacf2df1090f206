package service

import (
	"context"
	"fmt"

	"github.com/okian/gambit/internal/adapters/repository"
	"github.com/okian/gambit/internal/domain/model"
)

// View answers read queries against a finished report. It is safe for
// concurrent use because the report is never modified after the run.
type View struct {
	report *Report
	byName map[string]model.LeaderboardEntry
}

// NewView indexes report for lookups by competitor.
func NewView(report *Report) *View {
	byName := make(map[string]model.LeaderboardEntry, len(report.Leaderboard))
	for _, e := range report.Leaderboard {
		byName[e.Competitor] = e
	}
	return &View{report: report, byName: byName}
}

// Leaderboard returns the first limit entries, or all when limit <= 0.
func (v *View) Leaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	entries := v.report.Leaderboard
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Rank returns competitor's leaderboard entry. A competitor that played but
// did not pass the deviation threshold is reported as not found.
func (v *View) Rank(_ context.Context, competitor string) (model.LeaderboardEntry, error) {
	if e, ok := v.byName[competitor]; ok {
		return e, nil
	}
	if _, played := v.report.States[competitor]; played {
		return model.LeaderboardEntry{}, fmt.Errorf("%w: %s is not ranked below the deviation threshold", repository.ErrNotFound, competitor)
	}
	return model.LeaderboardEntry{}, fmt.Errorf("%w: %s", repository.ErrNotFound, competitor)
}

// History returns competitor's rating history.
func (v *View) History(_ context.Context, competitor string) ([]model.HistoryPoint, error) {
	points := v.report.HistoryOf(competitor)
	if points == nil && competitor == v.report.HistoryCompetitor {
		points = v.report.History
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, competitor)
	}
	return points, nil
}

// GetStats returns the run statistics.
func (v *View) GetStats() map[string]any {
	s := v.report.Stats
	skipped := make(map[string]int, len(s.Skipped))
	for k, n := range s.Skipped {
		skipped[k] = n
	}
	return map[string]any{
		"records":         s.Records,
		"outcomes":        s.Outcomes,
		"skipped":         s.SkippedTotal(),
		"skipped_by_kind": skipped,
		"competitors":     s.Competitors,
		"ranked":          len(v.report.Leaderboard),
		"duration_ms":     v.report.Duration.Milliseconds(),
	}
}
