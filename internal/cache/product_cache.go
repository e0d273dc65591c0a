package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/awspkg"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
)

const (
	// VersionKey holds the current generation of product listing entries.
	VersionKey = "products:version"
	listPrefix = "products:v"

	DefaultTTL = 5 * time.Minute
)

// ProductCache caches rendered product listings. Invalidate bumps a version
// counter so every older entry stops being read and expires on its own.
// Redis failures are treated as misses.
type ProductCache struct {
	redis   *redis.Client
	ttl     time.Duration
	metrics *awspkg.MetricsClient
}

func NewProductCache(client *redis.Client, ttl time.Duration, metrics *awspkg.MetricsClient) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{redis: client, ttl: ttl, metrics: metrics}
}

// Slot is the entry a Get looked up, pinned to the generation that was
// current at that moment. Filling it after an Invalidate writes into the
// retired generation, so a listing read before a catalog change is never
// served after it.
type Slot struct {
	Key        string
	Generation int64
	pinned     bool
}

// Get decodes the entry for key into dest and reports whether it was found.
// The returned Slot is what SetAsync fills on a miss.
func (c *ProductCache) Get(ctx context.Context, key string, dest any) (Slot, bool) {
	slot := Slot{Key: key}
	if c == nil || c.redis == nil {
		return slot, false
	}
	version, err := c.version(ctx)
	if err != nil {
		return slot, false
	}
	slot.Generation, slot.pinned = version, true

	raw, err := c.redis.Get(ctx, entryKey(version, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.record(awspkg.MetricCacheMisses)
		return slot, false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn(ctx, "failed to unmarshal cached entry", zap.String("key", key), zap.Error(err))
		return slot, false
	}
	c.record(awspkg.MetricCacheHits)
	return slot, true
}

// SetAsync fills slot with value without blocking the request. Slots whose
// generation was never read are dropped.
func (c *ProductCache) SetAsync(slot Slot, value any) {
	if c == nil || c.redis == nil || !slot.pinned {
		return
	}
	body, err := json.Marshal(value)
	if err != nil {
		logger.Log.Warn("failed to marshal cache entry", zap.String("key", slot.Key), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.store(ctx, slot, body); err != nil {
			logger.Log.Warn("failed to cache entry", zap.String("key", slot.Key), zap.Error(err))
		}
	}()
}

func (c *ProductCache) store(ctx context.Context, slot Slot, body []byte) error {
	return c.redis.Set(ctx, entryKey(slot.Generation, slot.Key), body, c.ttl).Err()
}

// Invalidate retires every cached listing.
func (c *ProductCache) Invalidate(ctx context.Context) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, VersionKey).Err(); err != nil {
		logger.Warn(ctx, "failed to bump cache version", zap.Error(err))
	}
}

// version returns the current generation, seeding it from the clock when the
// key is missing so entries from an evicted generation are never reused.
func (c *ProductCache) version(ctx context.Context) (int64, error) {
	v, err := c.redis.Get(ctx, VersionKey).Int64()
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, redis.Nil) {
		logger.Debug(ctx, "cache version unavailable", zap.Error(err))
		return 0, err
	}

	if err := c.redis.SetNX(ctx, VersionKey, time.Now().UnixNano(), 0).Err(); err != nil {
		return 0, err
	}
	return c.redis.Get(ctx, VersionKey).Int64()
}

func (c *ProductCache) record(metric string) {
	if !c.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.metrics.RecordCount(ctx, metric, map[string]string{"Cache": "products"})
	}()
}

func entryKey(version int64, key string) string {
	return listPrefix + strconv.FormatInt(version, 10) + ":" + key
}

// ListKey names the cache entry of a listing query.
func ListKey(kind string, parts ...any) string {
	key := kind
	for _, p := range parts {
		key += ":" + fmt.Sprint(p)
	}
	return key
}
