package leaderboard

import "errors"

// Sentinel kinds for rendering errors.
var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrWrite         = errors.New("write output failed")
)
