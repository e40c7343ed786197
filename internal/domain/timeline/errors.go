package timeline

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrSecondHalfBeforeHalfTime rejects out-of-order half requests.
	ErrSecondHalfBeforeHalfTime = errors.New("second half requested before half-time")

	// ErrHalfAlreadyGenerated rejects regeneration of a produced half.
	ErrHalfAlreadyGenerated = errors.New("half already generated")

	// ErrMatchFinished rejects operations after full-time.
	ErrMatchFinished = errors.New("match finished")

	// ErrInvalidTransition rejects marker calls made out of order.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidConditions rejects unknown weather/crowd/stadium/tempo values.
	ErrInvalidConditions = errors.New("invalid match conditions")

	// ErrMissingTeams rejects generator construction without both teams.
	ErrMissingTeams = errors.New("missing team configuration")

	// ErrUnknownSide rejects operations on a side that is not home or away.
	ErrUnknownSide = errors.New("unknown side")
)
