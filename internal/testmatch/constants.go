package testmatch

// HTTP status code constants.
const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusNoContent = 204
)

// Match timing constants.
const (
	HalfTimeMinute  = 45
	SecondHalfStart = 46
)

// Verification constants.
const (
	// PossessionTolerance absorbs float rounding in the two shares.
	PossessionTolerance = 0.5
)
