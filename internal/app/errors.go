package service

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrReadArchive    = errors.New("read archive failed")
	ErrCorruptArchive = errors.New("corrupt archive")
	ErrRating         = errors.New("rating failed")
)
