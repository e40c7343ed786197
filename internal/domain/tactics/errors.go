package tactics

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownTactic     = errors.New("unknown tactic")
	ErrInvalidTactic     = errors.New("invalid tactic")
	ErrMissingAttributes = errors.New("missing attributes")
)
