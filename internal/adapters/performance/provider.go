// Package performance stores historical partner approval counts and
// serves them to the approval estimator.
package performance

import (
	"context"
	"sync"

	"github.com/finbridge/colend/internal/domain/approval"
	"github.com/finbridge/colend/pkg/logger"
)

// Record is one ingested performance observation for a partner and
// risk bucket.
type Record struct {
	PartnerID    string `json:"partner_id"`
	CIBILScore   int    `json:"cibil_score"`
	TotalApps    int64  `json:"total_apps"`
	ApprovedApps int64  `json:"approved_apps"`
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithBands sets the credit-score bucketing used when ingesting
// records. It must match the estimator's bucketing for cache busting
// to target the right entries.
func WithBands(bands approval.Bands) Option {
	return func(s *Store) {
		s.bands = bands
	}
}

// WithCache attaches the approval-rate cache so ingesting fresh data
// invalidates stale entries.
func WithCache(cache approval.Cache) Option {
	return func(s *Store) {
		s.cache = cache
	}
}

// Store is an in-memory implementation of approval.Provider. Samples
// accumulate per (partner, bucket); ingesting data for a pair busts
// the corresponding cache entry so the next estimate sees it.
type Store struct {
	mu      sync.RWMutex
	samples map[approval.Key]approval.Sample
	bands   approval.Bands
	cache   approval.Cache
	log     logger.Logger
}

// NewStore creates an empty performance store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		samples: make(map[approval.Key]approval.Sample),
		bands:   approval.DefaultBands(),
		log:     logger.Get().Named("performance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApprovalStats implements approval.Provider.
func (s *Store) ApprovalStats(_ context.Context, partnerID string, bucket approval.Bucket) (approval.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sample, ok := s.samples[approval.Key{PartnerID: partnerID, Bucket: bucket}]
	return sample, ok
}

// Ingest merges one observation into the store and invalidates the
// cached rate for its (partner, bucket) pair.
func (s *Store) Ingest(ctx context.Context, rec Record) error {
	if err := rec.validate(); err != nil {
		return err
	}

	key := approval.Key{PartnerID: rec.PartnerID, Bucket: s.bands.Bucket(rec.CIBILScore)}

	s.mu.Lock()
	sample := s.samples[key]
	sample.TotalApps += rec.TotalApps
	sample.ApprovedApps += rec.ApprovedApps
	s.samples[key] = sample
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Invalidate(ctx, key)
	}

	s.log.Debug(ctx, "ingested performance record",
		logger.String("partner_id", rec.PartnerID),
		logger.String("bucket", string(key.Bucket)),
		logger.Int("total", int(sample.TotalApps)),
	)
	return nil
}

// Reset drops all samples and flushes the attached cache.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.samples = make(map[approval.Key]approval.Sample)
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}

func (r Record) validate() error {
	switch {
	case r.PartnerID == "":
		return errMissingPartner
	case r.TotalApps <= 0:
		return errNoApplications
	case r.ApprovedApps < 0 || r.ApprovedApps > r.TotalApps:
		return errApprovedOutOfRange
	}
	return nil
}
