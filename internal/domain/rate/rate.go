// Package rate computes blended interest rates for co-lending splits.
//
// All arithmetic uses decimal fixed-point values: blended rates feed
// profit comparisons and reporting, which require reproducible
// 4-decimal-place results.
package rate

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// reportPlaces is the decimal precision used for reported rates.
const reportPlaces = 4

var one = decimal.NewFromInt(1)

// weightEpsilon bounds the tolerated drift of w_O + w_L from 1.
var weightEpsilon = decimal.New(1, -9)

// Blended computes R_B = w_O*R_O + w_L*R_L.
//
// Weights must be non-negative and sum to 1 within weightEpsilon;
// otherwise ErrInvalidWeight is returned. Rates must be non-negative.
func Blended(origRate, lenderRate, origWeight, lenderWeight decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateWeights(origWeight, lenderWeight); err != nil {
		return decimal.Zero, err
	}
	if origRate.IsNegative() || lenderRate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: rates must not be negative", ErrInvalidRate)
	}

	return origWeight.Mul(origRate).Add(lenderWeight.Mul(lenderRate)), nil
}

// ValidateWeights checks that the participation weights are non-negative
// and sum to 1 within the fixed epsilon.
func ValidateWeights(origWeight, lenderWeight decimal.Decimal) error {
	if origWeight.IsNegative() || lenderWeight.IsNegative() {
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidWeight)
	}
	sum := origWeight.Add(lenderWeight)
	if sum.Sub(one).Abs().GreaterThan(weightEpsilon) {
		return fmt.Errorf("%w: weights must sum to 1, got %s", ErrInvalidWeight, sum)
	}
	return nil
}

// Report rounds a rate to the 4-decimal precision used in responses.
func Report(r decimal.Decimal) decimal.Decimal {
	return r.Round(reportPlaces)
}
