package rate

import "errors"

// Sentinel kinds for rate calculation errors.
var (
	ErrInvalidWeight = errors.New("invalid participation weight")
	ErrInvalidRate   = errors.New("invalid rate")
)
