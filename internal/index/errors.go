package index

import "errors"

// Build errors
var (
	ErrNoTags = errors.New("no tags could be indexed")
)

// Persistence errors
var (
	ErrIndexFormat = errors.New("index file is corrupt or has an incompatible schema")
)
