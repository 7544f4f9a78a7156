package models

import "errors"

// Custom errors
var (
	// ErrInsufficientData means no usable game history exists for the
	// player; the analysis is a terminal failure for that player/prop.
	ErrInsufficientData = errors.New("insufficient historical data")

	// ErrInvalidConfig means the scoring configuration is unusable
	// (weights do not sum to 1.0, thresholds out of order). Fatal at load.
	ErrInvalidConfig = errors.New("invalid scoring configuration")

	// ErrInvalidProp means the prop type is unknown or the line is not
	// positive; rejected before any computation.
	ErrInvalidProp = errors.New("invalid prop")

	// ErrNotFound is propagated unchanged from the statistics provider
	ErrNotFound = errors.New("not found")
)
