package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheUnavailable is an exported constant or variable used by the gatekeeping engine.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrInvalidKey is an exported constant or variable used by the gatekeeping engine.
	ErrInvalidKey = errors.New("cache key must be non-empty")
)

// Cache defines a public type used by gatekeeper APIs.
//
// Cache instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Cache struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a [Cache] over the given Redis client. Keys are namespaced
// under prefix (default "gk:cache").
func New(redisClient redis.UniversalClient, prefix string) *Cache {
	if prefix == "" {
		prefix = "gk:cache"
	}
	return &Cache{redis: redisClient, prefix: prefix}
}

// Get describes the get operation and its observable behavior.
//
// Get unmarshals the cached value into dest and reports whether the key was
// present. A miss is (false, nil); an unreachable store or undecodable value
// is an error.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}

	raw, err := c.redis.Get(ctx, c.prefix+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %q: %w", key, err)
	}
	return true, nil
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}

	if err := c.redis.Set(ctx, c.prefix+":"+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		if k == "" {
			return ErrInvalidKey
		}
		full[i] = c.prefix + ":" + k
	}

	if err := c.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// InvalidatePrefix describes the invalidateprefix operation and its observable behavior.
//
// InvalidatePrefix removes every key under the given sub-prefix with an
// incremental SCAN, so large sweeps do not block the store. It returns the
// number of keys removed.
func (c *Cache) InvalidatePrefix(ctx context.Context, subPrefix string) (int64, error) {
	if subPrefix == "" {
		return 0, ErrInvalidKey
	}

	pattern := c.prefix + ":" + subPrefix + "*"

	var removed int64
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.redis.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return removed, nil
}
