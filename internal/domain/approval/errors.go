package approval

import "errors"

// Sentinel kinds for approval estimation errors.
var (
	ErrInvalidBands = errors.New("invalid risk bands")
)
