// Package app wires the allocation engine, partnership repository,
// performance store, and approval-rate cache into one service with a
// managed lifecycle.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/adapters/cache"
	"github.com/finbridge/colend/internal/adapters/performance"
	"github.com/finbridge/colend/internal/adapters/repository"
	"github.com/finbridge/colend/internal/config"
	"github.com/finbridge/colend/internal/domain/approval"
	"github.com/finbridge/colend/internal/domain/model"
	"github.com/finbridge/colend/internal/domain/profit"
	"github.com/finbridge/colend/internal/domain/selection"
	"github.com/finbridge/colend/internal/engine"
	"github.com/finbridge/colend/pkg/logger"
	"github.com/finbridge/colend/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRand injects the selection random source, for deterministic
// test runs.
func WithRand(rng selection.Rand) Option {
	return func(s *Service) {
		s.rng = rng
	}
}

// WithCache replaces the approval-rate cache chosen from config.
func WithCache(c approval.Cache) Option {
	return func(s *Service) {
		s.cacheOverride = c
	}
}

// Service exposes the allocation operations the transport layer calls.
// Construct with New, then Start before serving and Stop on shutdown.
type Service struct {
	cfg *config.Config
	log logger.Logger

	partnerships *repository.Store
	performance  *performance.Store
	estimator    *approval.Estimator
	engine       *engine.Engine

	rng           selection.Rand
	cacheOverride approval.Cache
	closers       []func() error

	started time.Time
}

// New assembles a Service from configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New()
	}

	s := &Service{
		cfg: cfg,
		log: logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}

	bands, err := approval.NewBands(cfg.RiskBands)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildService, err)
	}

	rateCache := s.cacheOverride
	if rateCache == nil {
		rateCache, err = s.buildCache()
		if err != nil {
			return nil, err
		}
	}

	s.partnerships = repository.NewStore()
	s.performance = performance.NewStore(
		performance.WithBands(bands),
		performance.WithCache(rateCache),
	)

	s.estimator = approval.New(s.performance, rateCache,
		approval.WithBands(bands),
		approval.WithDefaultRate(decimal.NewFromFloat(cfg.ApprovalDefaultRate)),
		approval.WithClamp(
			decimal.NewFromFloat(cfg.ApprovalMinRate),
			decimal.NewFromFloat(cfg.ApprovalMaxRate),
		),
		approval.WithHistoricalWeight(decimal.NewFromFloat(cfg.ApprovalHistoricalWeight)),
	)

	engineOpts := []engine.Option{
		engine.WithScorer(selection.NewScorer(
			selection.WithFloor(decimal.NewFromFloat(cfg.ScoreFloor)),
		)),
		engine.WithGrid(profit.Grid{
			Min:  decimal.NewFromFloat(cfg.OptimizerMinWeight),
			Max:  decimal.NewFromFloat(cfg.OptimizerMaxWeight),
			Step: decimal.NewFromFloat(cfg.OptimizerStep),
		}),
		engine.WithOptimizeParticipation(cfg.OptimizeParticipation),
		engine.WithRequireProfitable(cfg.RequireProfitable),
		engine.WithBatchWorkers(cfg.BatchWorkerCount),
	}
	if s.rng != nil {
		engineOpts = append(engineOpts, engine.WithRand(s.rng))
	}
	s.engine = engine.New(s.estimator, engineOpts...)

	return s, nil
}

func (s *Service) buildCache() (approval.Cache, error) {
	ttl := time.Duration(s.cfg.ApprovalCacheTTLSeconds) * time.Second

	switch s.cfg.CacheBackend {
	case "redis":
		r := cache.NewRedis(s.cfg.RedisAddr, cache.WithRedisTTL(ttl))
		s.closers = append(s.closers, r.Close)
		return r, nil
	case "memory", "":
		return cache.NewMemory(cache.WithTTL(ttl)), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", ErrBuildService, s.cfg.CacheBackend)
	}
}

// Start marks the service live. It holds no background goroutines of
// its own; the transport layer drives all work.
func (s *Service) Start(ctx context.Context) error {
	s.started = time.Now()
	metrics.UpdateWorkerCount(s.cfg.BatchWorkerCount)
	s.log.Info(ctx, "service started",
		logger.String("cache_backend", s.cfg.CacheBackend),
		logger.Int("batch_workers", s.cfg.BatchWorkerCount),
	)
	return nil
}

// Stop releases held resources, closing any external cache connection.
func (s *Service) Stop(ctx context.Context) error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.log.Info(ctx, "service stopped")
	return firstErr
}

// Allocate decides the best partner for one loan against the active
// partnerships. It does not consume monthly limits; call Confirm once
// the allocation is acted on.
func (s *Service) Allocate(ctx context.Context, loan model.LoanRequest) (*model.AllocationResult, error) {
	return s.engine.Allocate(ctx, loan, s.partnerships.Active(ctx))
}

// AllocateBatch decides allocations for many loans against a single
// snapshot of the active partnerships.
func (s *Service) AllocateBatch(ctx context.Context, loans []model.LoanRequest) []engine.ItemResult {
	return s.engine.AllocateBatch(ctx, loans, s.partnerships.Active(ctx))
}

// Confirm consumes a partnership's monthly limit for an acted-on
// allocation.
func (s *Service) Confirm(ctx context.Context, partnershipID string, amount decimal.Decimal) error {
	return s.partnerships.Consume(ctx, partnershipID, amount)
}

// Partnerships exposes the partnership repository to the transport
// layer.
func (s *Service) Partnerships() *repository.Store {
	return s.partnerships
}

// Performance exposes the historical performance store.
func (s *Service) Performance() *performance.Store {
	return s.performance
}

// Stats summarizes the service state for the stats endpoint.
type Stats struct {
	PartnershipCount int           `json:"partnership_count"`
	BatchWorkers     int           `json:"batch_workers"`
	CacheBackend     string        `json:"cache_backend"`
	Uptime           time.Duration `json:"uptime"`
}

// Stats reports current service statistics.
func (s *Service) Stats() Stats {
	return Stats{
		PartnershipCount: s.partnerships.Count(),
		BatchWorkers:     s.cfg.BatchWorkerCount,
		CacheBackend:     s.cfg.CacheBackend,
		Uptime:           time.Since(s.started),
	}
}
