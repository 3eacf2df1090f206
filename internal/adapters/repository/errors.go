package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound = errors.New("competitor not found")
	ErrEmptyID  = errors.New("empty competitor id")
)
