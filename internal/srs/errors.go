package srs

import "errors"

// Precondition violations. Check with errors.Is.
var (
	ErrInvalidQuality = errors.New("srs: quality must be between 1 and 5")
	ErrItemSuspended  = errors.New("srs: item is suspended")
	ErrNoSessionItem  = errors.New("srs: session has no current item")
)
