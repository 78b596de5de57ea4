// Package cache provides approval-rate cache implementations: an
// in-memory TTL cache for the engine's hot path and a Redis-backed
// variant for deployments that share rates across instances.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/approval"
)

// defaultTTL bounds how long a cached approval rate may be served
// before the provider is consulted again.
const defaultTTL = 5 * time.Minute

// MemoryOption applies a configuration option to the Memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock injects the time source, for expiry tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

type entry struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// Memory is a concurrency-safe in-process TTL cache keyed by
// (partner, risk bucket). Reads take the shared lock; expired entries
// are treated as misses and overwritten by the next populate.
type Memory struct {
	mu      sync.RWMutex
	entries map[approval.Key]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory cache with the default TTL.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[approval.Key]entry),
		ttl:     defaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached rate for key, if present and unexpired.
func (m *Memory) Get(_ context.Context, key approval.Key) (decimal.Decimal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || m.now().After(e.expiresAt) {
		return decimal.Zero, false
	}
	return e.rate, true
}

// Set stores the rate for key with a fresh TTL.
func (m *Memory) Set(_ context.Context, key approval.Key, rate decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{rate: rate, expiresAt: m.now().Add(m.ttl)}
}

// Invalidate removes the entry for key, typically because new
// performance data arrived for that partner and bucket.
func (m *Memory) Invalidate(_ context.Context, key approval.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

// InvalidateAll drops every cached rate.
func (m *Memory) InvalidateAll(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[approval.Key]entry)
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
