package repository

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound    = errors.New("match not found")
	ErrDuplicateID = errors.New("duplicate match id")
)
