// Package simulate runs repeated in-process allocations against
// synthetic partnerships and reports how closely the empirical partner
// frequencies track the expected selection weights.
package simulate

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/approval"
	"github.com/finbridge/colend/internal/domain/model"
	"github.com/finbridge/colend/internal/engine"
)

// Config controls a simulation run.
type Config struct {
	Trials   int
	Seed     int64
	Partners int
}

// PartnerOutcome aggregates one partner's selection behavior.
type PartnerOutcome struct {
	PartnerID string  `json:"partner_id"`
	Expected  float64 `json:"expected"`
	Observed  float64 `json:"observed"`
	Selected  int     `json:"selected"`
}

// Report is the outcome of a simulation run.
type Report struct {
	Trials       int              `json:"trials"`
	Outcomes     []PartnerOutcome `json:"outcomes"`
	MaxDeviation float64          `json:"max_deviation"`
}

// Run executes the simulation and writes a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer) (*Report, error) {
	if cfg.Trials <= 0 {
		cfg.Trials = 10000
	}
	if cfg.Partners <= 0 {
		cfg.Partners = 3
	}

	partnerships := syntheticPartnerships(cfg.Partners)
	loan := syntheticLoan()

	eng := engine.New(
		approval.New(nil, nil),
		engine.WithRand(rand.New(rand.NewSource(cfg.Seed))), //nolint:gosec
	)

	// One probe run yields the normalized weights every trial shares,
	// since the inputs never change between trials.
	probe, err := eng.Allocate(ctx, loan, partnerships)
	if err != nil {
		return nil, fmt.Errorf("probe allocation: %w", err)
	}
	expected := make(map[string]float64, len(probe.Considered))
	for _, c := range probe.Considered {
		expected[c.Partnership.PartnerID], _ = c.SelectionWeight.Float64()
	}

	counts := make(map[string]int, cfg.Partners)
	for i := 0; i < cfg.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := eng.Allocate(ctx, loan, partnerships)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		counts[res.Recommended.Partnership.PartnerID]++
	}

	report := &Report{Trials: cfg.Trials}
	for partnerID, exp := range expected {
		obs := float64(counts[partnerID]) / float64(cfg.Trials)
		dev := obs - exp
		if dev < 0 {
			dev = -dev
		}
		if dev > report.MaxDeviation {
			report.MaxDeviation = dev
		}
		report.Outcomes = append(report.Outcomes, PartnerOutcome{
			PartnerID: partnerID,
			Expected:  exp,
			Observed:  obs,
			Selected:  counts[partnerID],
		})
	}
	sort.Slice(report.Outcomes, func(i, j int) bool {
		return report.Outcomes[i].PartnerID < report.Outcomes[j].PartnerID
	})

	if out != nil {
		writeSummary(out, report)
	}
	return report, nil
}

func writeSummary(out io.Writer, report *Report) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "partner\texpected\tobserved\tselected\n")
	for _, o := range report.Outcomes {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%d\n", o.PartnerID, o.Expected, o.Observed, o.Selected)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "trials=%d max_deviation=%.4f\n", report.Trials, report.MaxDeviation)
}

// syntheticPartnerships builds n partnerships whose remaining limits
// descend, so the expected selection weights differ per partner.
func syntheticPartnerships(n int) []model.Partnership {
	out := make([]model.Partnership, 0, n)
	for i := 0; i < n; i++ {
		limit := decimal.NewFromInt(int64((n - i) * 10_000_000))
		out = append(out, model.Partnership{
			ID:                 fmt.Sprintf("sim-ps-%d", i+1),
			OriginatorID:       "sim-orig",
			PartnerID:          fmt.Sprintf("sim-bank-%d", i+1),
			PartnerName:        fmt.Sprintf("Simulated Bank %d", i+1),
			MinAmount:          decimal.NewFromInt(100_000),
			MaxAmount:          decimal.NewFromInt(5_000_000),
			Products:           []string{"personal_loan"},
			MonthlyLimit:       limit,
			RemainingLimit:     limit,
			LenderRate:         decimal.RequireFromString("0.12"),
			ServiceFeeRate:     decimal.RequireFromString("0.01"),
			OriginatorCostRate: decimal.RequireFromString("0.02"),
			LenderCostRate:     decimal.RequireFromString("0.02"),
			OriginatorWeight:   decimal.RequireFromString("0.25"),
			LenderWeight:       decimal.RequireFromString("0.75"),
			Active:             true,
		})
	}
	return out
}

func syntheticLoan() model.LoanRequest {
	return model.LoanRequest{
		LoanID:         "sim-loan",
		Amount:         decimal.NewFromInt(500_000),
		TenureMonths:   36,
		ProductType:    "personal_loan",
		OriginatorRate: decimal.RequireFromString("0.18"),
		CIBILScore:     720,
		FOIR:           decimal.RequireFromString("0.35"),
	}
}
