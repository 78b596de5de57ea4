// Package profit computes per-party margins for a co-lending split and
// searches for participation ratios that keep both parties profitable.
package profit

import (
	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/rate"
)

// Input carries everything needed to compute both margins at a fixed
// participation split. The blended rate is derived from the rates and
// weights, so callers only supply raw terms.
type Input struct {
	OriginatorRate decimal.Decimal
	LenderRate     decimal.Decimal

	OriginatorWeight decimal.Decimal
	LenderWeight     decimal.Decimal

	// ServiceFeeRate is paid by the lender to the originator.
	ServiceFeeRate     decimal.Decimal
	OriginatorCostRate decimal.Decimal
	LenderCostRate     decimal.Decimal
}

// Breakdown is the computed margin split.
type Breakdown struct {
	BlendedRate      decimal.Decimal
	OriginatorProfit decimal.Decimal
	LenderProfit     decimal.Decimal
	BothProfitable   bool
}

// Compute derives both margins:
//
//	P_originator = w_O*R_B + S - w_O*C_O
//	P_lender     = w_L*R_B - w_L*C_L - S
//
// A negative margin does not fail the computation; callers decide what
// to do with unprofitable splits.
func Compute(in Input) (Breakdown, error) {
	blended, err := rate.Blended(in.OriginatorRate, in.LenderRate, in.OriginatorWeight, in.LenderWeight)
	if err != nil {
		return Breakdown{}, err
	}

	origProfit := in.OriginatorWeight.Mul(blended).
		Add(in.ServiceFeeRate).
		Sub(in.OriginatorWeight.Mul(in.OriginatorCostRate))

	lenderProfit := in.LenderWeight.Mul(blended).
		Sub(in.LenderWeight.Mul(in.LenderCostRate)).
		Sub(in.ServiceFeeRate)

	return Breakdown{
		BlendedRate:      blended,
		OriginatorProfit: origProfit,
		LenderProfit:     lenderProfit,
		BothProfitable:   !origProfit.IsNegative() && !lenderProfit.IsNegative(),
	}, nil
}
