package selection

import (
	"github.com/shopspring/decimal"
)

// Rand supplies uniform draws in [0, 1). *math/rand.Rand satisfies it;
// injecting the source keeps selection exactly reproducible in tests.
type Rand interface {
	Float64() float64
}

// Pick performs cumulative-distribution sampling over normalized
// weights: one uniform draw, then a walk over the weights in their
// given order, returning the index of the first entry whose cumulative
// weight exceeds the draw.
//
// Callers must pass weights in a stable order (score descending, then
// partner id ascending); ties are broken by that order, never by
// re-randomizing. Returns ErrNoCandidates on empty input.
func Pick(weights []decimal.Decimal, rng Rand) (int, error) {
	if len(weights) == 0 {
		return 0, ErrNoCandidates
	}

	draw := decimal.NewFromFloat(rng.Float64())

	cumulative := decimal.Zero
	for i, w := range weights {
		cumulative = cumulative.Add(w)
		if draw.LessThan(cumulative) {
			return i, nil
		}
	}

	// Rounding left the cumulative sum a hair under 1; the draw belongs
	// to the final entry.
	return len(weights) - 1, nil
}
