package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	ErrUnknownCompetitor = errors.New("unknown competitor")
	ErrInvalidResult     = errors.New("invalid game result")
	ErrStore             = errors.New("rating store failed")
)
