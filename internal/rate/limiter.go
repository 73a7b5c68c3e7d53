package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	KeyPrefix    string
	StoreTimeout time.Duration
}

// Policy is a request quota: at most Limit requests per rolling Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result is the outcome of a single quota check. Reset is the unix timestamp
// at which the oldest surviving request marker leaves the window.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     int64
}

// Limiter enforces sliding-window request quotas per namespace+identifier
// pair using Redis sorted sets.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "gk"
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 250 * time.Millisecond
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check records one request for namespace+identifier against the policy and
// reports whether it is within quota.
//
// The check prunes markers older than the window, counts the survivors, and
// inserts a new marker only when the count is below the limit. A denied
// request mutates nothing beyond the prune. Store errors and timeouts fail
// open: the returned Result is permissive and the error wraps
// [ErrRedisUnavailable] so the caller can record the degradation.
func (l *Limiter) Check(ctx context.Context, namespace, identifier string, p Policy) (Result, error) {
	if namespace == "" || identifier == "" {
		return Result{}, ErrInvalidKey
	}
	if p.Limit <= 0 || p.Window <= 0 {
		return Result{}, ErrInvalidPolicy
	}

	now := time.Now()

	ctx, cancel := context.WithTimeout(ctx, l.config.StoreTimeout)
	defer cancel()

	key := l.windowKey(namespace, identifier)
	cutoff := strconv.FormatInt(now.Add(-p.Window).UnixMilli(), 10)

	pipe := l.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return failOpen(now, p), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	count := int(countCmd.Val())
	if count >= p.Limit {
		reset := now.Add(p.Window).Unix()
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			reset = time.UnixMilli(int64(oldest[0].Score)).Add(p.Window).Unix()
		}
		return Result{
			Allowed:   false,
			Limit:     p.Limit,
			Remaining: 0,
			Reset:     reset,
		}, nil
	}

	// Marker member combines the timestamp with a random component so two
	// requests landing in the same millisecond never collide.
	member := strconv.FormatInt(now.UnixMilli(), 10) + ":" + uuid.NewString()

	insert := l.redis.TxPipeline()
	insert.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	insert.Expire(ctx, key, p.Window)
	if _, err := insert.Exec(ctx); err != nil {
		return failOpen(now, p), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return Result{
		Allowed:   true,
		Limit:     p.Limit,
		Remaining: p.Limit - count - 1,
		Reset:     now.Add(p.Window).Unix(),
	}, nil
}

func (l *Limiter) windowKey(namespace, identifier string) string {
	return l.config.KeyPrefix + ":" + namespace + ":" + identifier
}

// Availability of content takes priority over strict quota enforcement, so a
// dead store admits the request instead of denying it.
func failOpen(now time.Time, p Policy) Result {
	return Result{
		Allowed:   true,
		Limit:     p.Limit,
		Remaining: 1,
		Reset:     now.Add(p.Window).Unix(),
	}
}
