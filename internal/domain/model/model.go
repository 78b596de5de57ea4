// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanRequest represents a single loan to be allocated. It is immutable
// once created; callers construct it at the boundary and validate it
// before it reaches the engine.
type LoanRequest struct {
	LoanID         string          `json:"loan_id"`
	Amount         decimal.Decimal `json:"amount"`
	TenureMonths   int             `json:"tenure_months"`
	ProductType    string          `json:"product_type"`
	OriginatorRate decimal.Decimal `json:"originator_rate"`
	CIBILScore     int             `json:"cibil_score"`
	FOIR           decimal.Decimal `json:"foir"`
	LTR            decimal.Decimal `json:"ltr"` // optional, zero when absent
}

// Partnership describes a co-lending arrangement between an originator
// and a lending partner. RemainingLimit is the monthly limit minus the
// amount already allocated this period; it is supplied by the caller,
// never tracked by the engine.
type Partnership struct {
	ID                 string          `json:"id"`
	OriginatorID       string          `json:"originator_id"`
	PartnerID          string          `json:"partner_id"`
	PartnerName        string          `json:"partner_name"`
	MinAmount          decimal.Decimal `json:"min_amount"`
	MaxAmount          decimal.Decimal `json:"max_amount"`
	Products           []string        `json:"products"`
	MonthlyLimit       decimal.Decimal `json:"monthly_limit"`
	RemainingLimit     decimal.Decimal `json:"remaining_limit"`
	LenderRate         decimal.Decimal `json:"lender_rate"`
	ServiceFeeRate     decimal.Decimal `json:"service_fee_rate"`
	OriginatorCostRate decimal.Decimal `json:"originator_cost_rate"`
	LenderCostRate     decimal.Decimal `json:"lender_cost_rate"`
	OriginatorWeight   decimal.Decimal `json:"originator_weight"`
	LenderWeight       decimal.Decimal `json:"lender_weight"`
	Active             bool            `json:"active"`
}

// AllowsProduct reports whether the partnership covers the product type.
func (p Partnership) AllowsProduct(productType string) bool {
	for _, pt := range p.Products {
		if pt == productType {
			return true
		}
	}
	return false
}

// Candidate is the per-allocation-attempt view of a partnership joined
// with computed financials. Created fresh per allocation call, never
// persisted by the engine.
type Candidate struct {
	Partnership      Partnership     `json:"partnership"`
	OriginatorWeight decimal.Decimal `json:"originator_weight"`
	LenderWeight     decimal.Decimal `json:"lender_weight"`
	BlendedRate      decimal.Decimal `json:"blended_rate"`
	OriginatorProfit decimal.Decimal `json:"originator_profit"`
	LenderProfit     decimal.Decimal `json:"lender_profit"`
	NotProfitable    bool            `json:"not_profitable"`
	ApprovalRate     decimal.Decimal `json:"approval_rate"`
	SelectionScore   decimal.Decimal `json:"selection_score"`
	SelectionWeight  decimal.Decimal `json:"selection_weight"`
}

// AllocationResult is the outcome of one allocation call.
//
// Invariants: Recommended is always a member of Considered, and is
// non-nil exactly when Considered is non-empty. Considered is sorted by
// selection score descending, then partner id ascending.
type AllocationResult struct {
	LoanID         string        `json:"loan_id"`
	Recommended    *Candidate    `json:"recommended"`
	Considered     []Candidate   `json:"considered"`
	Reasoning      string        `json:"reasoning"`
	ProcessingTime time.Duration `json:"processing_time"`
}
