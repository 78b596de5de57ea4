package approval

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/model"
	"github.com/finbridge/colend/pkg/metrics"
)

// Key identifies a cached approval rate.
type Key struct {
	PartnerID string
	Bucket    Bucket
}

// Cache stores historical approval rates per (partner, bucket). Entries
// expire after the cache's TTL; new performance data for a pair busts
// the entry via Invalidate. Implementations must support concurrent
// reads; racing populates are harmless since values are deterministic
// given the same underlying data.
type Cache interface {
	Get(ctx context.Context, key Key) (decimal.Decimal, bool)
	Set(ctx context.Context, key Key, rate decimal.Decimal)
	Invalidate(ctx context.Context, key Key)
	InvalidateAll(ctx context.Context)
}

// Sample aggregates historical application counts for a partner and
// risk bucket. Providers resolve it ahead of time; the estimator never
// performs I/O of its own.
type Sample struct {
	TotalApps    int64
	ApprovedApps int64
}

// Provider supplies pre-resolved historical performance data.
type Provider interface {
	// ApprovalStats returns the sample for a partner and bucket, and
	// whether any data exists.
	ApprovalStats(ctx context.Context, partnerID string, bucket Bucket) (Sample, bool)
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithBands sets the credit-score bucketing.
func WithBands(bands Bands) Option {
	return func(e *Estimator) {
		if len(bands.edges) > 0 {
			e.bands = bands
		}
	}
}

// WithDefaultRate sets the rate used when no historical data exists.
func WithDefaultRate(rate decimal.Decimal) Option {
	return func(e *Estimator) {
		if rate.IsPositive() {
			e.defaultRate = rate
		}
	}
}

// WithClamp bounds the estimated rate to [min, max].
func WithClamp(min, max decimal.Decimal) Option {
	return func(e *Estimator) {
		if min.IsPositive() && max.GreaterThan(min) {
			e.minRate = min
			e.maxRate = max
		}
	}
}

// WithHistoricalWeight sets the blend between historical data and the
// rule-based score; the rule score receives the complement.
func WithHistoricalWeight(w decimal.Decimal) Option {
	return func(e *Estimator) {
		if !w.IsNegative() && w.LessThanOrEqual(decimal.NewFromInt(1)) {
			e.histWeight = w
		}
	}
}

// Estimator derives an approval probability for a (partner, loan) pair.
// It never fails: absent data yields a conservative default so the
// allocation pipeline can always produce a ranking.
type Estimator struct {
	bands    Bands
	cache    Cache
	provider Provider

	defaultRate decimal.Decimal
	minRate     decimal.Decimal
	maxRate     decimal.Decimal
	histWeight  decimal.Decimal
}

// New creates an estimator backed by the given provider and cache.
func New(provider Provider, cache Cache, opts ...Option) *Estimator {
	e := &Estimator{
		bands:       DefaultBands(),
		cache:       cache,
		provider:    provider,
		defaultRate: decimal.RequireFromString("0.75"),
		minRate:     decimal.RequireFromString("0.10"),
		maxRate:     decimal.RequireFromString("0.95"),
		histWeight:  decimal.RequireFromString("0.70"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bucket exposes the configured bucketing for a credit score.
func (e *Estimator) Bucket(score int) Bucket {
	return e.bands.Bucket(score)
}

// Rate estimates the approval probability for the partner taking this
// loan. The historical component is cached per (partner, bucket); the
// rule-based component depends on the individual loan and is always
// recomputed.
func (e *Estimator) Rate(ctx context.Context, partnerID string, loan model.LoanRequest) decimal.Decimal {
	hist := e.historicalRate(ctx, partnerID, e.bands.Bucket(loan.CIBILScore))
	rule := ruleScore(loan)

	one := decimal.NewFromInt(1)
	blended := e.histWeight.Mul(hist).Add(one.Sub(e.histWeight).Mul(rule))

	return clamp(blended, e.minRate, e.maxRate)
}

func (e *Estimator) historicalRate(ctx context.Context, partnerID string, bucket Bucket) decimal.Decimal {
	key := Key{PartnerID: partnerID, Bucket: bucket}

	if e.cache != nil {
		if rate, ok := e.cache.Get(ctx, key); ok {
			metrics.RecordCacheHit()
			return rate
		}
		metrics.RecordCacheMiss()
	}

	rate := e.defaultRate
	if e.provider != nil {
		if sample, ok := e.provider.ApprovalStats(ctx, partnerID, bucket); ok && sample.TotalApps > 0 {
			rate = decimal.NewFromInt(sample.ApprovedApps).
				Div(decimal.NewFromInt(sample.TotalApps))
		}
	}

	if e.cache != nil {
		e.cache.Set(ctx, key, rate)
	}
	return rate
}

func clamp(v, min, max decimal.Decimal) decimal.Decimal {
	if v.LessThan(min) {
		return min
	}
	if v.GreaterThan(max) {
		return max
	}
	return v
}
