// Package history records each competitor's rating as of each day played.
package history

import (
	"slices"
	"sync"

	"github.com/okian/gambit/internal/domain/model"
)

// Tracker keeps one rating per competitor per day. A later observation for
// the same day replaces the earlier one, so a day's entry is the rating
// after the competitor's last game that day.
type Tracker struct {
	mu     sync.RWMutex
	byName map[string]map[model.Date]float64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{byName: make(map[string]map[model.Date]float64)}
}

// Observe records st as competitor's rating on date.
func (t *Tracker) Observe(competitor string, date model.Date, st model.RatingState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	days, ok := t.byName[competitor]
	if !ok {
		days = make(map[model.Date]float64)
		t.byName[competitor] = days
	}
	days[date] = st.Rating
}

// Series returns competitor's history in ascending date order, or nil for
// a competitor that never played.
func (t *Tracker) Series(competitor string) []model.HistoryPoint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	days, ok := t.byName[competitor]
	if !ok {
		return nil
	}
	out := make([]model.HistoryPoint, 0, len(days))
	for d, r := range days {
		out = append(out, model.HistoryPoint{Competitor: competitor, Date: d, Rating: r})
	}
	slices.SortFunc(out, func(a, b model.HistoryPoint) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// Competitors returns every tracked competitor in name order.
func (t *Tracker) Competitors() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
