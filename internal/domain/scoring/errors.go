package scoring

import "errors"

// Sentinel errors for scoring values.
var (
	ErrScoreRange       = errors.New("competence out of range")
	ErrScoreNotInt      = errors.New("competence must be an integer")
	ErrVectorLength     = errors.New("competence vector must have 40 entries")
	ErrUnknownScale     = errors.New("unknown scale")
	ErrUnknownDimension = errors.New("unknown dimension")
)
