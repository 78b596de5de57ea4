package approval

import (
	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/model"
)

// Rule-score adjustments applied on top of the 0.5 base. The thresholds
// mirror the credit policy used for historical calibration.
var (
	ruleBase = decimal.RequireFromString("0.5")

	cibilStrongBonus = decimal.RequireFromString("0.3")  // >= 750
	cibilGoodBonus   = decimal.RequireFromString("0.1")  // >= 700
	cibilWeakMalus   = decimal.RequireFromString("0.2")  // < 650
	foirLowBonus     = decimal.RequireFromString("0.1")  // <= 0.3
	foirHighMalus    = decimal.RequireFromString("0.1")  // >= 0.5
	ltrLowBonus      = decimal.RequireFromString("0.05") // <= 0.7
	ltrHighMalus     = decimal.RequireFromString("0.1")  // >= 0.9

	foirLow  = decimal.RequireFromString("0.3")
	foirHigh = decimal.RequireFromString("0.5")
	ltrLow   = decimal.RequireFromString("0.7")
	ltrHigh  = decimal.RequireFromString("0.9")
)

// ruleScore derives a business-rule approval component in [0, 1] from
// the loan's risk characteristics.
func ruleScore(loan model.LoanRequest) decimal.Decimal {
	score := ruleBase

	switch {
	case loan.CIBILScore >= 750:
		score = score.Add(cibilStrongBonus)
	case loan.CIBILScore >= 700:
		score = score.Add(cibilGoodBonus)
	case loan.CIBILScore < 650:
		score = score.Sub(cibilWeakMalus)
	}

	if loan.FOIR.LessThanOrEqual(foirLow) {
		score = score.Add(foirLowBonus)
	} else if loan.FOIR.GreaterThanOrEqual(foirHigh) {
		score = score.Sub(foirHighMalus)
	}

	if loan.LTR.LessThanOrEqual(ltrLow) {
		score = score.Add(ltrLowBonus)
	} else if loan.LTR.GreaterThanOrEqual(ltrHigh) {
		score = score.Sub(ltrHighMalus)
	}

	return clamp(score, decimal.Zero, decimal.NewFromInt(1))
}
