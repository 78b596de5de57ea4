// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BatchWorkerCount sets the number of batch allocation workers.
	BatchWorkerCount int `koanf:"batch_worker_count"`

	// RiskBands lists the lower CIBIL edge of each risk bucket above the
	// base band. Scores below the first edge fall into the lowest bucket.
	RiskBands []int `koanf:"risk_bands"`

	// ApprovalCacheTTLSeconds bounds the lifetime of cached approval rates.
	ApprovalCacheTTLSeconds int `koanf:"approval_cache_ttl_seconds"`

	// ApprovalDefaultRate is used when no historical data exists for a
	// partner and risk bucket.
	ApprovalDefaultRate float64 `koanf:"approval_default_rate"`

	// ApprovalMinRate and ApprovalMaxRate clamp estimated approval rates.
	ApprovalMinRate float64 `koanf:"approval_min_rate"`
	ApprovalMaxRate float64 `koanf:"approval_max_rate"`

	// ApprovalHistoricalWeight blends historical approval data with the
	// rule-based score; the rule score gets the complement.
	ApprovalHistoricalWeight float64 `koanf:"approval_historical_weight"`

	// ScoreFloor clamps approval rates away from zero in selection scoring.
	ScoreFloor float64 `koanf:"score_floor"`

	// OptimizerMinWeight, OptimizerMaxWeight, and OptimizerStep define the
	// participation-ratio search grid.
	OptimizerMinWeight float64 `koanf:"optimizer_min_weight"`
	OptimizerMaxWeight float64 `koanf:"optimizer_max_weight"`
	OptimizerStep      float64 `koanf:"optimizer_step"`

	// OptimizeParticipation enables per-candidate participation-ratio
	// optimization instead of the partnership's configured weights.
	OptimizeParticipation bool `koanf:"optimize_participation"`

	// RequireProfitable restricts selection to candidates profitable for
	// both parties. All candidates are still reported.
	RequireProfitable bool `koanf:"require_profitable"`

	// CacheBackend selects the approval-rate cache: "memory" or "redis".
	CacheBackend string `koanf:"cache_backend"`

	// RedisAddr configures the Redis cache backend.
	RedisAddr string `koanf:"redis_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":8080",
		BatchWorkerCount:         runtime.NumCPU() * 2,
		RiskBands:                []int{650, 750, 800},
		ApprovalCacheTTLSeconds:  300,
		ApprovalDefaultRate:      0.75,
		ApprovalMinRate:          0.10,
		ApprovalMaxRate:          0.95,
		ApprovalHistoricalWeight: 0.70,
		ScoreFloor:               0.01,
		OptimizerMinWeight:       0.15,
		OptimizerMaxWeight:       0.50,
		OptimizerStep:            0.05,
		OptimizeParticipation:    false,
		RequireProfitable:        true,
		CacheBackend:             "memory",
		RedisAddr:                "localhost:6379",
	}
}
