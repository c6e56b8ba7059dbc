package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheKeyScan      = "stundenplan:conflicts:scan"
	cacheKeyLastSolve = "stundenplan:solver:last"
)

// CacheService wraps Redis for the read-side caches: the conflict scan and
// the last solve summary. A nil client degrades to a no-op so tests and
// cacheless deployments keep working.
type CacheService struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCacheService builds the cache wrapper.
func NewCacheService(client *redis.Client, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{client: client, ttl: ttl, metrics: metrics, logger: logger}
}

// GetJSON loads a key into dest, reporting whether it was present.
func (c *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		c.metrics.RecordCacheLookup(false)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache_decode_failed", zap.String("key", key), zap.Error(err))
		c.metrics.RecordCacheLookup(false)
		return false
	}
	c.metrics.RecordCacheLookup(true)
	return true
}

// SetJSON stores a value under the configured TTL. Failures are logged,
// never propagated.
func (c *CacheService) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache_encode_failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache_set_failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateSchedule drops every schedule-derived key. Called after any
// schedule write, manual or solver-driven.
func (c *CacheService) InvalidateSchedule(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKeyScan, cacheKeyLastSolve).Err(); err != nil {
		c.logger.Warn("cache_invalidate_failed", zap.Error(err))
	}
}
