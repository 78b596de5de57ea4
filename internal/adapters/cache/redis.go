package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/finbridge/colend/internal/domain/approval"
	"github.com/finbridge/colend/pkg/logger"
)

// RedisOption applies a configuration option to the Redis cache.
type RedisOption func(*Redis)

// WithRedisTTL sets the entry lifetime.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// Redis caches approval rates in Redis so multiple allocator instances
// share one view of partner performance. Entries expire server-side via
// the key TTL. Redis failures degrade to cache misses; the estimator's
// default rate keeps allocations flowing.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewRedis creates a Redis-backed cache talking to addr.
func NewRedis(addr string, opts ...RedisOption) *Redis {
	r := &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    defaultTTL,
		log:    logger.Get().Named("approval-cache"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func redisKey(key approval.Key) string {
	return fmt.Sprintf("colend:approval:%s:%s", key.PartnerID, key.Bucket)
}

// Get returns the cached rate for key, if present.
func (r *Redis) Get(ctx context.Context, key approval.Key) (decimal.Decimal, bool) {
	val, err := r.client.Get(ctx, redisKey(key)).Result()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn(ctx, "redis get failed", logger.Error(err))
		}
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		r.log.Warn(ctx, "malformed cached rate", logger.String("value", val), logger.Error(err))
		return decimal.Zero, false
	}
	return rate, true
}

// Set stores the rate for key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key approval.Key, rate decimal.Decimal) {
	if err := r.client.Set(ctx, redisKey(key), rate.String(), r.ttl).Err(); err != nil {
		r.log.Warn(ctx, "redis set failed", logger.Error(err))
	}
}

// Invalidate removes the entry for key.
func (r *Redis) Invalidate(ctx context.Context, key approval.Key) {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		r.log.Warn(ctx, "redis del failed", logger.Error(err))
	}
}

// InvalidateAll drops every cached rate owned by this service.
func (r *Redis) InvalidateAll(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, "colend:approval:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.log.Warn(ctx, "redis del failed", logger.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		r.log.Warn(ctx, "redis scan failed", logger.Error(err))
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
