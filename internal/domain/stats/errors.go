package stats

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownStat         = errors.New("unknown stat")
	ErrInvalidDistribution = errors.New("invalid distribution")
	ErrLoadBaselines       = errors.New("load baselines failed")
)
