package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CIBIL scores are defined on a fixed 300-900 scale.
const (
	cibilMin = 300
	cibilMax = 900
)

var one = decimal.NewFromInt(1)

// weightEpsilon bounds the tolerated drift of w_O + w_L from 1.
var weightEpsilon = decimal.New(1, -9)

// Validate checks field-level constraints on a loan request. It returns
// an error wrapping ErrInvalidLoan describing the first violation.
func (l LoanRequest) Validate() error {
	switch {
	case l.LoanID == "":
		return fmt.Errorf("%w: loan_id must not be empty", ErrInvalidLoan)
	case !l.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidLoan)
	case l.TenureMonths <= 0:
		return fmt.Errorf("%w: tenure_months must be positive", ErrInvalidLoan)
	case l.ProductType == "":
		return fmt.Errorf("%w: product_type must not be empty", ErrInvalidLoan)
	case !l.OriginatorRate.IsPositive() || l.OriginatorRate.GreaterThanOrEqual(one):
		return fmt.Errorf("%w: originator_rate must be in (0, 1)", ErrInvalidLoan)
	case l.CIBILScore < cibilMin || l.CIBILScore > cibilMax:
		return fmt.Errorf("%w: cibil_score must be between %d and %d", ErrInvalidLoan, cibilMin, cibilMax)
	case l.FOIR.IsNegative() || l.FOIR.GreaterThan(one):
		return fmt.Errorf("%w: foir must be in [0, 1]", ErrInvalidLoan)
	case l.LTR.IsNegative() || l.LTR.GreaterThan(one):
		return fmt.Errorf("%w: ltr must be in [0, 1]", ErrInvalidLoan)
	}
	return nil
}

// Validate checks structural constraints on a partnership.
func (p Partnership) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id must not be empty", ErrInvalidPartnership)
	case p.PartnerID == "":
		return fmt.Errorf("%w: partner_id must not be empty", ErrInvalidPartnership)
	case p.MinAmount.IsNegative():
		return fmt.Errorf("%w: min_amount must not be negative", ErrInvalidPartnership)
	case p.MinAmount.GreaterThan(p.MaxAmount):
		return fmt.Errorf("%w: min_amount must not exceed max_amount", ErrInvalidPartnership)
	case len(p.Products) == 0:
		return fmt.Errorf("%w: products must not be empty", ErrInvalidPartnership)
	case p.MonthlyLimit.IsNegative():
		return fmt.Errorf("%w: monthly_limit must not be negative", ErrInvalidPartnership)
	case p.OriginatorWeight.IsNegative() || p.LenderWeight.IsNegative():
		return fmt.Errorf("%w: participation weights must not be negative", ErrInvalidPartnership)
	}
	for _, rate := range []decimal.Decimal{p.LenderRate, p.ServiceFeeRate, p.OriginatorCostRate, p.LenderCostRate} {
		if rate.IsNegative() || rate.GreaterThan(one) {
			return fmt.Errorf("%w: rates must be in [0, 1]", ErrInvalidPartnership)
		}
	}
	if drift := p.OriginatorWeight.Add(p.LenderWeight).Sub(one).Abs(); drift.GreaterThan(weightEpsilon) {
		return fmt.Errorf("%w: participation weights must sum to 1, got %s",
			ErrInvalidPartnership, p.OriginatorWeight.Add(p.LenderWeight))
	}
	return nil
}
