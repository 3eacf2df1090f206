package pgn

import "errors"

// Sentinel kinds for reader errors.
var (
	ErrOpenArchive  = errors.New("open archive failed")
	ErrTruncatedTag = errors.New("truncated tag pair")
	ErrReaderClosed = errors.New("reader closed")
)
