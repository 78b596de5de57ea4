// Package selection converts candidate limits and approval rates into
// normalized selection weights and performs weighted random selection.
package selection

import (
	"github.com/shopspring/decimal"
)

// defaultFloor keeps approval rates away from zero so the score
// division can never blow up.
var defaultFloor = decimal.RequireFromString("0.01")

// ScorerOption applies a configuration option to the Scorer.
type ScorerOption func(*Scorer)

// WithFloor sets the minimum approval rate used in scoring.
func WithFloor(floor decimal.Decimal) ScorerOption {
	return func(s *Scorer) {
		if floor.IsPositive() {
			s.floor = floor
		}
	}
}

// Scorer computes raw selection scores. Deterministic given identical
// inputs.
type Scorer struct {
	floor decimal.Decimal
}

// NewScorer creates a scorer with the default approval-rate floor.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{floor: defaultFloor}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes Selection_Score = Allocated_Limit / Approval_Rate with
// the approval rate clamped to the configured floor.
func (s *Scorer) Score(allocatedLimit, approvalRate decimal.Decimal) decimal.Decimal {
	if approvalRate.LessThan(s.floor) {
		approvalRate = s.floor
	}
	return allocatedLimit.Div(approvalRate)
}

// Normalize divides each score by the sum of all scores, producing the
// probability weights consumed by the selector. When every score is
// zero the weights degrade to a uniform distribution so the caller can
// still rank and select.
func Normalize(scores []decimal.Decimal) []decimal.Decimal {
	if len(scores) == 0 {
		return nil
	}

	total := decimal.Zero
	for _, s := range scores {
		total = total.Add(s)
	}

	weights := make([]decimal.Decimal, len(scores))
	if !total.IsPositive() {
		uniform := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(len(scores))))
		for i := range weights {
			weights[i] = uniform
		}
		return weights
	}

	for i, s := range scores {
		weights[i] = s.Div(total)
	}
	return weights
}
