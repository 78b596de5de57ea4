package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COLEND_CONFIG is set
//  3. env (prefix COLEND_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("COLEND_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: COLEND_ADDR, COLEND_SCORE_FLOOR, ...
	// Keys keep their underscores to match koanf tags on the struct.
	envProvider := env.Provider("COLEND_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "colend_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ScoreFloor <= 0 || c.ScoreFloor >= 1:
		return fmt.Errorf("%w: score_floor must be in (0, 1)", ErrInvalidConfig)
	case c.ApprovalMinRate <= 0 || c.ApprovalMaxRate > 1 || c.ApprovalMinRate >= c.ApprovalMaxRate:
		return fmt.Errorf("%w: approval rate clamp must satisfy 0 < min < max <= 1", ErrInvalidConfig)
	case c.ApprovalHistoricalWeight < 0 || c.ApprovalHistoricalWeight > 1:
		return fmt.Errorf("%w: approval_historical_weight must be in [0, 1]", ErrInvalidConfig)
	case c.OptimizerStep <= 0 || c.OptimizerMinWeight < 0 || c.OptimizerMaxWeight > 1 || c.OptimizerMinWeight > c.OptimizerMaxWeight:
		return fmt.Errorf("%w: optimizer grid must satisfy 0 <= min <= max <= 1 and step > 0", ErrInvalidConfig)
	case c.CacheBackend != "memory" && c.CacheBackend != "redis":
		return fmt.Errorf("%w: cache_backend must be memory or redis", ErrInvalidConfig)
	}
	for i := 1; i < len(c.RiskBands); i++ {
		if c.RiskBands[i] <= c.RiskBands[i-1] {
			return fmt.Errorf("%w: risk_bands must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
