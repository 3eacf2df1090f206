package service

import (
	"slices"

	"github.com/okian/gambit/internal/domain/model"
)

// order sorts outcomes by date in place. Games on the same date keep their
// archive order.
func order(outcomes []model.GameOutcome) {
	slices.SortStableFunc(outcomes, func(a, b model.GameOutcome) int {
		return a.Date.Compare(b.Date)
	})
}
