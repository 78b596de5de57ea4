package profit

import "errors"

// Sentinel kinds for profit calculation errors.
var (
	ErrNoFeasibleSolution = errors.New("no feasible participation ratio")
	ErrInvalidGrid        = errors.New("invalid optimization grid")
)
