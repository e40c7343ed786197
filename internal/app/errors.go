package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNotStarted rejects operations on a service that was never started.
	ErrNotStarted = errors.New("service not started")

	// ErrMissingTeamName rejects match creation without both display names.
	ErrMissingTeamName = errors.New("missing team name")

	// ErrStreamActive rejects a second stream while one is being consumed.
	ErrStreamActive = errors.New("stream already active")
)
