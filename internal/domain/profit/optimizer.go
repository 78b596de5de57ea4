package profit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Grid defines the fixed search grid for participation-ratio
// optimization: originator weights from Min to Max inclusive, advancing
// by Step. The optimum is exact to Step precision.
type Grid struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Step decimal.Decimal
}

// DefaultGrid mirrors the production tuning: 15% to 50% in 5% steps.
func DefaultGrid() Grid {
	return Grid{
		Min:  decimal.RequireFromString("0.15"),
		Max:  decimal.RequireFromString("0.50"),
		Step: decimal.RequireFromString("0.05"),
	}
}

var one = decimal.NewFromInt(1)

// Optimum is the best participation split found on the grid.
type Optimum struct {
	OriginatorWeight decimal.Decimal
	LenderWeight     decimal.Decimal
	Breakdown        Breakdown
}

// OptimizeParticipation searches the grid for the originator weight that
// maximizes combined profit subject to both margins being non-negative.
// Returns ErrNoFeasibleSolution when no grid point satisfies the
// constraint, and ErrInvalidGrid when the grid itself is malformed.
func OptimizeParticipation(in Input, grid Grid) (Optimum, error) {
	if !grid.Step.IsPositive() || grid.Min.IsNegative() || grid.Max.GreaterThan(one) || grid.Min.GreaterThan(grid.Max) {
		return Optimum{}, fmt.Errorf("%w: min=%s max=%s step=%s", ErrInvalidGrid, grid.Min, grid.Max, grid.Step)
	}

	var (
		best      Optimum
		bestTotal decimal.Decimal
		found     bool
	)

	for w := grid.Min; w.LessThanOrEqual(grid.Max); w = w.Add(grid.Step) {
		candidate := in
		candidate.OriginatorWeight = w
		candidate.LenderWeight = one.Sub(w)

		bd, err := Compute(candidate)
		if err != nil {
			return Optimum{}, err
		}
		if !bd.BothProfitable {
			continue
		}

		total := bd.OriginatorProfit.Add(bd.LenderProfit)
		if !found || total.GreaterThan(bestTotal) {
			best = Optimum{
				OriginatorWeight: w,
				LenderWeight:     one.Sub(w),
				Breakdown:        bd,
			}
			bestTotal = total
			found = true
		}
	}

	if !found {
		return Optimum{}, ErrNoFeasibleSolution
	}
	return best, nil
}
