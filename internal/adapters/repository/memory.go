// Package repository persists co-lending partnerships and their
// monthly allocation usage.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/model"
	"github.com/finbridge/colend/pkg/logger"
	"github.com/finbridge/colend/pkg/metrics"
)

// Update carries a partial partnership update. Nil fields are left
// untouched.
type Update struct {
	ServiceFeeRate *decimal.Decimal `json:"service_fee_rate,omitempty"`
	MonthlyLimit   *decimal.Decimal `json:"monthly_limit,omitempty"`
	Active         *bool            `json:"active,omitempty"`
}

// Store is an in-memory partnership repository guarded by a RWMutex.
// It tracks per-partnership monthly usage so listings carry a
// remaining limit the engine can filter on.
type Store struct {
	mu           sync.RWMutex
	partnerships map[string]model.Partnership
	usage        map[string]decimal.Decimal
	log          logger.Logger
}

// NewStore creates an empty partnership store.
func NewStore() *Store {
	return &Store{
		partnerships: make(map[string]model.Partnership),
		usage:        make(map[string]decimal.Decimal),
		log:          logger.Get().Named("partnerships"),
	}
}

// Create validates and stores a partnership. An empty ID is assigned a
// fresh UUID. Returns the stored partnership.
func (s *Store) Create(ctx context.Context, p model.Partnership) (model.Partnership, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := p.Validate(); err != nil {
		return model.Partnership{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.partnerships[p.ID]; exists {
		return model.Partnership{}, ErrAlreadyExists
	}
	s.partnerships[p.ID] = p
	metrics.UpdatePartnershipCount(len(s.partnerships))

	s.log.Info(ctx, "partnership created",
		logger.String("id", p.ID),
		logger.String("partner_id", p.PartnerID),
	)
	return p, nil
}

// Get returns one partnership with its remaining limit resolved.
func (s *Store) Get(_ context.Context, id string) (model.Partnership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.partnerships[id]
	if !ok {
		return model.Partnership{}, ErrNotFound
	}
	return s.withRemaining(p), nil
}

// List returns all partnerships ordered by ID, remaining limits
// resolved.
func (s *Store) List(_ context.Context) []model.Partnership {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Partnership, 0, len(s.partnerships))
	for _, p := range s.partnerships {
		out = append(out, s.withRemaining(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Active returns the active partnerships only, the shape the engine
// consumes.
func (s *Store) Active(ctx context.Context) []model.Partnership {
	all := s.List(ctx)
	out := all[:0]
	for _, p := range all {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Apply patches a partnership in place. Validation runs against the
// patched value, so an update can never leave an invalid record behind.
func (s *Store) Apply(ctx context.Context, id string, upd Update) (model.Partnership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partnerships[id]
	if !ok {
		return model.Partnership{}, ErrNotFound
	}

	if upd.ServiceFeeRate != nil {
		p.ServiceFeeRate = *upd.ServiceFeeRate
	}
	if upd.MonthlyLimit != nil {
		p.MonthlyLimit = *upd.MonthlyLimit
	}
	if upd.Active != nil {
		p.Active = *upd.Active
	}
	if err := p.Validate(); err != nil {
		return model.Partnership{}, err
	}
	s.partnerships[id] = p

	s.log.Info(ctx, "partnership updated", logger.String("id", id))
	return s.withRemaining(p), nil
}

// Consume records an allocation against the partnership's monthly
// limit. Fails when the remaining limit cannot cover the amount, so a
// confirmed allocation can never overdraw a partner.
func (s *Store) Consume(_ context.Context, id string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partnerships[id]
	if !ok {
		return ErrNotFound
	}
	used := s.usage[id]
	if used.Add(amount).GreaterThan(p.MonthlyLimit) {
		return ErrLimitExceeded
	}
	s.usage[id] = used.Add(amount)
	return nil
}

// ResetMonth clears all usage counters at the start of a new period.
func (s *Store) ResetMonth(ctx context.Context) {
	s.mu.Lock()
	s.usage = make(map[string]decimal.Decimal)
	s.mu.Unlock()
	s.log.Info(ctx, "monthly usage reset")
}

// Count returns the number of stored partnerships.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partnerships)
}

// withRemaining resolves RemainingLimit from the usage counter. Caller
// holds at least a read lock.
func (s *Store) withRemaining(p model.Partnership) model.Partnership {
	remaining := p.MonthlyLimit.Sub(s.usage[p.ID])
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	p.RemainingLimit = remaining
	return p
}
