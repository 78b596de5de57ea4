// Package eligibility narrows a partnership list to those able to take
// a given loan.
package eligibility

import (
	"fmt"

	"github.com/finbridge/colend/internal/domain/model"
)

// Reason explains why a partnership was excluded.
type Reason string

const (
	ReasonInactive          Reason = "inactive"
	ReasonAmountBelowMin    Reason = "amount_below_min"
	ReasonAmountAboveMax    Reason = "amount_above_max"
	ReasonProductNotAllowed Reason = "product_not_allowed"
	ReasonLimitExhausted    Reason = "limit_exhausted"
)

// Exclusion pairs a partnership with the first reason it failed.
type Exclusion struct {
	PartnershipID string
	PartnerID     string
	Reason        Reason
}

func (e Exclusion) String() string {
	return fmt.Sprintf("%s:%s", e.PartnershipID, e.Reason)
}

// Eligible returns the partnerships that qualify for the loan. A
// partnership qualifies iff it is active, the loan amount falls within
// [MinAmount, MaxAmount], the product type is allowed, and the
// remaining monthly limit covers the amount. An empty result is not an
// error; the caller decides how to surface it.
func Eligible(loan model.LoanRequest, partnerships []model.Partnership) []model.Partnership {
	eligible, _ := Explain(loan, partnerships)
	return eligible
}

// Explain behaves like Eligible but also reports why each excluded
// partnership failed, for reasoning strings and operator debugging.
func Explain(loan model.LoanRequest, partnerships []model.Partnership) ([]model.Partnership, []Exclusion) {
	eligible := make([]model.Partnership, 0, len(partnerships))
	var excluded []Exclusion

	for _, p := range partnerships {
		if reason, ok := check(loan, p); !ok {
			excluded = append(excluded, Exclusion{
				PartnershipID: p.ID,
				PartnerID:     p.PartnerID,
				Reason:        reason,
			})
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible, excluded
}

func check(loan model.LoanRequest, p model.Partnership) (Reason, bool) {
	switch {
	case !p.Active:
		return ReasonInactive, false
	case loan.Amount.LessThan(p.MinAmount):
		return ReasonAmountBelowMin, false
	case loan.Amount.GreaterThan(p.MaxAmount):
		return ReasonAmountAboveMax, false
	case !p.AllowsProduct(loan.ProductType):
		return ReasonProductNotAllowed, false
	case p.RemainingLimit.LessThan(loan.Amount):
		return ReasonLimitExhausted, false
	}
	return "", true
}
