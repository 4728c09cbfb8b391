// Package ratelimit is the Rate Limiter (C4): per-user sliding window
// and per-IP fixed window admission checks, both stateless between
// calls — the KV gateway is the sole shared state, per spec.md §4.4.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gin-clean-starter/internal/infra/kv"

	"github.com/redis/go-redis/v9"
)

type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type Limiter struct {
	kv *kv.Gateway
}

func New(gateway *kv.Gateway) *Limiter {
	return &Limiter{kv: gateway}
}

// UserWindow is a per-user sliding window over window seconds with a
// max ceiling, scored by the monotonic millisecond timestamp. A single
// pipelined request performs, in order: zremrangebyscore, zcard, zadd,
// expire — exactly the four ops and ordering spec.md §4.4 requires, so
// the boundary-burst behaviour a naive fixed window admits cannot occur.
func (l *Limiter) UserWindow(ctx context.Context, userID string, max int, window time.Duration) (Decision, error) {
	key := fmt.Sprintf("rate:user:%s", userID)
	now := time.Now()
	nowMs := now.UnixMilli()
	windowMs := window.Milliseconds()
	cutoff := nowMs - windowMs

	var card *redis.IntCmd
	err := l.kv.Pipeline(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff, 10))
		card = p.ZCard(ctx, key)
		p.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: strconv.FormatInt(nowMs, 10)})
		p.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	n := int(card.Val())
	resetAt := now.Add(window)
	if oldest, err := l.kv.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: "0", Max: "+inf", Count: 1}); err == nil && len(oldest) > 0 {
		if score, err := strconv.ParseInt(oldest[0], 10, 64); err == nil {
			resetAt = time.UnixMilli(score).Add(window)
		}
	}

	remaining := max - n - 1
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   n < max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// IPWindow is a per-IP fixed window: incr a counter, set its expiry only
// on the first increment, admit iff value <= max.
func (l *Limiter) IPWindow(ctx context.Context, addr string, max int, window time.Duration) (Decision, error) {
	key := fmt.Sprintf("rate:ip:%s", addr)

	n, err := l.kv.Incr(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if n == 1 {
		if err := l.kv.Expire(ctx, key, window); err != nil {
			return Decision{}, err
		}
	}

	remaining := max - int(n)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   n <= int64(max),
		Remaining: remaining,
		ResetAt:   time.Now().Add(window),
	}, nil
}
