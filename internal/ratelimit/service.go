package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"dv-relay/internal/observability"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	window         = time.Minute
	keyPrefix      = "dvrelay:rl:"
	localBuckets   = 10000
	localBucketTTL = 10 * time.Minute
)

var ErrEmptyKey = errors.New("rate limit key is empty")

// RedisStore is the subset of the Redis client the sliding window needs.
type RedisStore interface {
	IsEnabled() bool
	ZRemRangeByScore(ctx context.Context, key, min, max string) error
	ZCard(ctx context.Context, key string) (int64, error)
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZAdd(ctx context.Context, key string, members ...goredis.Z) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool          `json:"allowed"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Service limits conversation turns per caller. Redis gives a shared sliding
// window across instances; without it each process keeps token buckets.
type Service struct {
	redis     RedisStore
	perMinute int
	logger    *observability.Logger
	now       func() time.Time

	mu    sync.Mutex
	local *expirable.LRU[string, *rate.Limiter]
}

// NewService creates a limiter allowing perMinute turns per key. redis may be nil.
// perMinute <= 0 allows everything.
func NewService(redis RedisStore, perMinute int, logger *observability.Logger) *Service {
	if redis != nil && !redis.IsEnabled() {
		redis = nil
	}
	return &Service{
		redis:     redis,
		perMinute: perMinute,
		logger:    logger,
		now:       time.Now,
		local:     expirable.NewLRU[string, *rate.Limiter](localBuckets, nil, localBucketTTL),
	}
}

// Enabled reports whether any limit is enforced.
func (s *Service) Enabled() bool {
	return s != nil && s.perMinute > 0
}

// Check records one turn for key and reports whether it is allowed.
// Redis failures fall back to the local buckets.
func (s *Service) Check(ctx context.Context, key string) (Result, error) {
	if !s.Enabled() {
		return Result{Allowed: true}, nil
	}
	if key == "" {
		return Result{}, ErrEmptyKey
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "rate_limit_key", Value: key},
		observability.Field{Key: "rate_limit", Value: s.perMinute},
	)

	if s.redis != nil {
		result, err := s.checkRedis(ctx, key)
		if err == nil {
			return result, nil
		}
		s.logger.WarnWithError(ctx, "Redis rate limit check failed, falling back to local buckets", err)
	}

	return s.checkLocal(key), nil
}

// checkRedis implements a sliding window over a sorted set of request timestamps.
func (s *Service) checkRedis(ctx context.Context, key string) (Result, error) {
	key = keyPrefix + key
	now := s.now()
	windowStartMs := now.Add(-window).UnixMilli()

	if err := s.redis.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStartMs, 10)); err != nil {
		return Result{}, fmt.Errorf("failed to remove old entries: %w", err)
	}

	count, err := s.redis.ZCard(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("failed to count requests: %w", err)
	}

	if int(count) >= s.perMinute {
		resetAt := now.Add(window)
		if oldest, err := s.redis.ZRange(ctx, key, 0, 0); err == nil && len(oldest) > 0 {
			if ms, ok := memberTime(oldest[0]); ok {
				resetAt = time.UnixMilli(ms).Add(window)
			}
		}
		retryAfter := resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Result{Limit: s.perMinute, ResetAt: resetAt, RetryAfter: retryAfter}, nil
	}

	nowMs := now.UnixMilli()
	member := goredis.Z{Score: float64(nowMs), Member: fmt.Sprintf("%d-%s", nowMs, uuid.NewString())}
	if err := s.redis.ZAdd(ctx, key, member); err != nil {
		return Result{}, fmt.Errorf("failed to add request: %w", err)
	}

	if err := s.redis.Expire(ctx, key, 2*window); err != nil {
		s.logger.WarnWithError(ctx, "failed to set expiration on rate limit key", err)
	}

	return Result{
		Allowed:   true,
		Limit:     s.perMinute,
		Remaining: s.perMinute - int(count) - 1,
		ResetAt:   now.Add(window),
	}, nil
}

func (s *Service) checkLocal(key string) Result {
	s.mu.Lock()
	lim, ok := s.local.Get(key)
	if !ok {
		lim = rate.NewLimiter(rate.Every(window/time.Duration(s.perMinute)), s.perMinute)
		s.local.Add(key, lim)
	}
	s.mu.Unlock()

	now := s.now()
	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
		r.CancelAt(now)
		return Result{Limit: s.perMinute, ResetAt: now.Add(delay), RetryAfter: delay}
	}

	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Limit: s.perMinute, Remaining: remaining, ResetAt: now.Add(window)}
}

func memberTime(member string) (int64, bool) {
	head, _, _ := strings.Cut(member, "-")
	ms, err := strconv.ParseInt(head, 10, 64)
	return ms, err == nil
}
