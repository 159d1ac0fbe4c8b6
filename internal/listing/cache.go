package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/resilience"
	"github.com/sells-group/directory-cli/internal/seo"
)

// Cache stores the listings loaded for a location. Scores depend on the
// current time, so they are computed on every read and never cached.
type Cache interface {
	// Get returns the cached listings and whether they were present.
	Get(ctx context.Context, key string) ([]Listing, bool, error)
	Set(ctx context.Context, key string, listings []Listing, ttl time.Duration) error
}

// CacheKey returns the cache key for a location.
func CacheKey(loc seo.Location) string {
	return fmt.Sprintf("listings:%s:%s", loc.State, loc.CitySlug)
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// RedisCache is a Cache backed by Redis. Calls go through a circuit breaker
// so an unreachable Redis costs one fast failure instead of a timeout per
// request.
type RedisCache struct {
	rdb     redis.Cmdable
	breaker *resilience.CircuitBreaker
}

// NewRedisCache creates a RedisCache. breaker may be nil.
func NewRedisCache(rdb redis.Cmdable, breaker *resilience.CircuitBreaker) *RedisCache {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(5, 30*time.Second, nil)
	}
	return &RedisCache{rdb: rdb, breaker: breaker}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Listing, bool, error) {
	var b []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		b, err = c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			b = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, false, eris.Wrapf(err, "listing: cache get %s", key)
	}
	if b == nil {
		return nil, false, nil
	}

	var listings []Listing
	if err := json.Unmarshal(b, &listings); err != nil {
		return nil, false, eris.Wrapf(err, "listing: decode cached %s", key)
	}
	return listings, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, listings []Listing, ttl time.Duration) error {
	b, err := json.Marshal(listings)
	if err != nil {
		return eris.Wrap(err, "listing: encode listings")
	}
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.rdb.Set(ctx, key, b, ttl).Err()
	})
	return eris.Wrapf(err, "listing: cache set %s", key)
}
