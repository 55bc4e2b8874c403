package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	promMetrics "github.com/sifan077/Rinku/internal/infra/prometheus"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "metadata:"

// Cache stores encoded metadata by page URL.
type Cache interface {
	Get(ctx context.Context, url string) ([]byte, bool, error)
	Set(ctx context.Context, url string, value []byte, ttl time.Duration) error
}

// RedisCache keeps metadata under metadata:<url> keys.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, cacheKeyPrefix+url).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, url string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, cacheKeyPrefix+url, value, ttl).Err()
}

// CachedProvider serves metadata from the cache and falls back to the
// wrapped provider on a miss. Only successful lookups are cached, and cache
// failures degrade to a direct provider call.
type CachedProvider struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedProvider(next Provider, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (p *CachedProvider) FetchPageMetadata(ctx context.Context, url string) (Metadata, error) {
	if meta, ok := p.lookup(ctx, url); ok {
		promMetrics.MetadataFetches.WithLabelValues("cache", "hit").Inc()
		return meta, nil
	}

	meta, err := p.next.FetchPageMetadata(ctx, url)
	if err != nil {
		return nil, err
	}

	p.store(ctx, url, meta)
	return meta, nil
}

// Warm fetches metadata for url unless it is already cached.
func (p *CachedProvider) Warm(ctx context.Context, url string) error {
	if _, ok := p.lookup(ctx, url); ok {
		return nil
	}
	meta, err := p.next.FetchPageMetadata(ctx, url)
	if err != nil {
		return err
	}
	p.store(ctx, url, meta)
	return nil
}

func (p *CachedProvider) lookup(ctx context.Context, url string) (Metadata, bool) {
	raw, ok, err := p.cache.Get(ctx, url)
	if err != nil {
		p.logger.Warn("metadata cache read failed", zap.String("url", url), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		p.logger.Warn("discarding undecodable cache entry", zap.String("url", url), zap.Error(err))
		return nil, false
	}
	return meta, true
}

func (p *CachedProvider) store(ctx context.Context, url string, meta Metadata) {
	raw, err := json.Marshal(meta)
	if err != nil {
		p.logger.Warn("failed to encode metadata for cache", zap.String("url", url), zap.Error(err))
		return
	}
	if err := p.cache.Set(ctx, url, raw, p.ttl); err != nil {
		p.logger.Warn("metadata cache write failed", zap.String("url", url), zap.Error(err))
	}
}
