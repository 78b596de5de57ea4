// Package engine implements the co-lending allocation decision
// pipeline: eligibility filtering, per-candidate financials, selection
// scoring, and weighted random partner selection.
//
// The engine owns no long-lived state beyond the approval-rate cache
// held by its estimator. Each allocation call is a synchronous
// computation over its inputs; independent calls may run in parallel.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/approval"
	"github.com/finbridge/colend/internal/domain/eligibility"
	"github.com/finbridge/colend/internal/domain/model"
	"github.com/finbridge/colend/internal/domain/profit"
	"github.com/finbridge/colend/internal/domain/selection"
	"github.com/finbridge/colend/pkg/metrics"
)

// Engine runs the allocation pipeline:
// RECEIVED -> FILTERED -> SCORED -> SELECTED, or REJECTED when the
// filter leaves nothing. No retries; a failed allocation is a terminal,
// reported outcome for that call.
type Engine struct {
	estimator *approval.Estimator
	scorer    *selection.Scorer
	grid      profit.Grid
	rng       selection.Rand

	optimizeParticipation bool
	requireProfitable     bool
	batchWorkers          int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRand injects the random source used for weighted selection.
// Seed it for reproducible tests.
func WithRand(rng selection.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = lockRand(rng)
		}
	}
}

// WithScorer replaces the selection scorer (e.g. with a custom floor).
func WithScorer(s *selection.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithGrid sets the participation-ratio optimization grid.
func WithGrid(g profit.Grid) Option {
	return func(e *Engine) {
		e.grid = g
	}
}

// WithOptimizeParticipation toggles per-candidate participation-ratio
// optimization instead of each partnership's configured weights.
func WithOptimizeParticipation(enabled bool) Option {
	return func(e *Engine) {
		e.optimizeParticipation = enabled
	}
}

// WithRequireProfitable restricts selection to candidates profitable
// for both parties. Unprofitable candidates are still reported with
// the not_profitable flag either way.
func WithRequireProfitable(enabled bool) Option {
	return func(e *Engine) {
		e.requireProfitable = enabled
	}
}

// WithBatchWorkers sets the parallelism for AllocateBatch.
func WithBatchWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchWorkers = n
		}
	}
}

// New creates an Engine evaluating approval rates with estimator.
func New(estimator *approval.Estimator, opts ...Option) *Engine {
	e := &Engine{
		estimator:         estimator,
		scorer:            selection.NewScorer(),
		grid:              profit.DefaultGrid(),
		rng:               lockRand(rand.New(rand.NewSource(time.Now().UnixNano()))), //nolint:gosec // selection weighting, not security
		requireProfitable: true,
		batchWorkers:      4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Allocate picks the most suitable partner for one loan. Partnerships
// carry their remaining monthly limits, resolved by the caller. The
// result lists every considered candidate sorted by selection score
// descending (partner id ascending on ties), with the recommendation
// pointing into that list.
func (e *Engine) Allocate(ctx context.Context, loan model.LoanRequest, partnerships []model.Partnership) (*model.AllocationResult, error) {
	start := time.Now()

	if err := loan.Validate(); err != nil {
		return nil, err
	}

	eligible, excluded := eligibility.Explain(loan, partnerships)
	if len(eligible) == 0 {
		metrics.RecordAllocationRejected()
		return nil, fmt.Errorf("loan %s: %w", loan.LoanID, ErrNoEligiblePartners)
	}

	candidates := make([]model.Candidate, 0, len(eligible))
	for _, p := range eligible {
		c, err := e.evaluate(ctx, loan, p)
		if err != nil {
			return nil, fmt.Errorf("loan %s: partnership %s: %w", loan.LoanID, p.ID, err)
		}
		candidates = append(candidates, c)
	}

	sortCandidates(candidates)

	// Selection pool: indexes into candidates, honoring the
	// profitability policy while still reporting everything.
	pool := make([]int, 0, len(candidates))
	for i, c := range candidates {
		if e.requireProfitable && c.NotProfitable {
			continue
		}
		pool = append(pool, i)
	}
	if len(pool) == 0 {
		metrics.RecordAllocationRejected()
		return nil, fmt.Errorf("loan %s: %w", loan.LoanID, ErrNoProfitableCandidates)
	}

	scores := make([]decimal.Decimal, len(pool))
	for i, idx := range pool {
		scores[i] = candidates[idx].SelectionScore
	}
	weights := selection.Normalize(scores)
	for i, idx := range pool {
		candidates[idx].SelectionWeight = weights[i]
	}

	picked, err := selection.Pick(weights, e.rng)
	if err != nil {
		// Unreachable once the pool is non-empty; an invariant breach,
		// not a business outcome.
		return nil, fmt.Errorf("loan %s: %w", loan.LoanID, err)
	}
	winner := pool[picked]

	result := &model.AllocationResult{
		LoanID:         loan.LoanID,
		Considered:     candidates,
		Reasoning:      reasoning(candidates[winner], len(eligible), len(pool), excluded),
		ProcessingTime: time.Since(start),
	}
	result.Recommended = &result.Considered[winner]

	metrics.RecordAllocation()
	metrics.RecordAllocationLatency(float64(result.ProcessingTime.Milliseconds()))

	return result, nil
}

// evaluate joins one eligible partnership with its computed financials.
func (e *Engine) evaluate(ctx context.Context, loan model.LoanRequest, p model.Partnership) (model.Candidate, error) {
	in := profit.Input{
		OriginatorRate:     loan.OriginatorRate,
		LenderRate:         p.LenderRate,
		OriginatorWeight:   p.OriginatorWeight,
		LenderWeight:       p.LenderWeight,
		ServiceFeeRate:     p.ServiceFeeRate,
		OriginatorCostRate: p.OriginatorCostRate,
		LenderCostRate:     p.LenderCostRate,
	}

	origWeight, lenderWeight := p.OriginatorWeight, p.LenderWeight
	var bd profit.Breakdown

	if e.optimizeParticipation {
		opt, err := profit.OptimizeParticipation(in, e.grid)
		switch {
		case err == nil:
			origWeight, lenderWeight = opt.OriginatorWeight, opt.LenderWeight
			bd = opt.Breakdown
		case isNoFeasible(err):
			// No grid point keeps both parties profitable; fall back to
			// the configured split and let the flag tell the story.
			fixed, ferr := profit.Compute(in)
			if ferr != nil {
				return model.Candidate{}, ferr
			}
			bd = fixed
		default:
			return model.Candidate{}, err
		}
	} else {
		fixed, err := profit.Compute(in)
		if err != nil {
			return model.Candidate{}, err
		}
		bd = fixed
	}

	approvalRate := e.estimator.Rate(ctx, p.PartnerID, loan)
	score := e.scorer.Score(p.RemainingLimit, approvalRate)

	return model.Candidate{
		Partnership:      p,
		OriginatorWeight: origWeight,
		LenderWeight:     lenderWeight,
		BlendedRate:      bd.BlendedRate,
		OriginatorProfit: bd.OriginatorProfit,
		LenderProfit:     bd.LenderProfit,
		NotProfitable:    !bd.BothProfitable,
		ApprovalRate:     approvalRate,
		SelectionScore:   score,
	}, nil
}

// sortCandidates orders by selection score descending, then partner id
// ascending. The selector depends on this order for tie-breaking.
func sortCandidates(candidates []model.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].SelectionScore, candidates[j].SelectionScore
		if !si.Equal(sj) {
			return si.GreaterThan(sj)
		}
		return candidates[i].Partnership.PartnerID < candidates[j].Partnership.PartnerID
	})
}

func reasoning(winner model.Candidate, eligible, pool int, excluded []eligibility.Exclusion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "selected partner %s by weighted random selection (weight %s, approval rate %s) among %d candidates",
		winner.Partnership.PartnerID,
		winner.SelectionWeight.Round(4),
		winner.ApprovalRate.Round(4),
		pool,
	)
	if pool < eligible {
		fmt.Fprintf(&b, " (%d eligible, %d not profitable)", eligible, eligible-pool)
	}
	if len(excluded) > 0 {
		parts := make([]string, len(excluded))
		for i, ex := range excluded {
			parts[i] = ex.String()
		}
		fmt.Fprintf(&b, "; excluded: %s", strings.Join(parts, ", "))
	}
	return b.String()
}

func isNoFeasible(err error) bool {
	return errors.Is(err, profit.ErrNoFeasibleSolution)
}

// lockedRand serializes draws from a shared random source so batch
// workers can share one seeded sequence.
type lockedRand struct {
	mu  sync.Mutex
	src selection.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func lockRand(src selection.Rand) selection.Rand {
	if _, ok := src.(*lockedRand); ok {
		return src
	}
	return &lockedRand{src: src}
}
