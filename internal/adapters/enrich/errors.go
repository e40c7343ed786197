package enrich

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrEnrichment marks a failure to produce text for an event.
	ErrEnrichment = errors.New("enrichment failed")
)
