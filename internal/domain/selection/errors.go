package selection

import "errors"

// Sentinel kinds for selection errors.
var (
	ErrNoCandidates = errors.New("no candidates for selection")
)
