package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEligiblePartners is returned when the eligibility filter
	// leaves no candidates for a loan.
	ErrNoEligiblePartners = errors.New("no eligible partnerships found")

	// ErrNoProfitableCandidates is returned when eligible candidates
	// exist but none is profitable for both parties and the engine is
	// configured to require profitability. It matches
	// ErrNoEligiblePartners under errors.Is so callers may treat both
	// as the same rejection class.
	ErrNoProfitableCandidates = fmt.Errorf("%w: no mutually profitable candidates", ErrNoEligiblePartners)
)
