// Package kv is the Key/Value Gateway (C2): pooled access to Redis with
// typed primitives for every shape the rate limiter, cache, and claim
// queue need. Grounded on the teacher's C1 gateway idiom (a thin struct
// wrapping a pooled client, soft per-call timeouts, a single place that
// classifies "absent" vs "broken") but built on
// github.com/redis/go-redis/v9, absent from every example repo's go.mod
// and adopted as the idiomatic ecosystem client for this concern.
package kv

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("key not found")

// Retry tuning for spec.md §4.2's "transient failures are retried with
// capped backoff at the gateway; permanent failures are surfaced".
// Bounded by attempt count rather than elapsed time: the surrounding
// per-call context (withTimeout) is the real backstop, so a retry loop
// can never outlive the soft timeout it's retrying within.
const (
	retryMaxAttempts = 3
	retryInitialWait = 10 * time.Millisecond
	retryMaxWait     = 100 * time.Millisecond
)

// isTransient tells a broken connection apart from a well-formed
// response the caller just doesn't like. redis.Nil ("key not found") is
// a normal outcome, not a failure, and a permanent command error
// (WRONGTYPE, bad syntax) will fail identically on every retry — only
// network-level failures are worth retrying.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || err.Error() == errPoolTimeoutMsg
}

// errPoolTimeoutMsg is the message go-redis's internal connection pool
// uses for a pool-wait timeout (internal/pool.ErrPoolTimeout) — that
// sentinel isn't re-exported from the redis package in v9, so it's
// matched by message instead.
const errPoolTimeoutMsg = "redis: connection pool timeout"

// retryOp runs op with capped exponential backoff, stopping immediately
// on a permanent error or once ctx is done.
func retryOp(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialWait
	bo.MaxInterval = retryMaxWait
	bo.MaxElapsedTime = 0 // the caller's context deadline is the real bound

	// WithMaxRetries counts retries after the first attempt.
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, retryMaxAttempts-1), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// Gateway wraps two Redis connections — one for commands, one reserved
// for pub/sub — per spec.md §4.2, so pub/sub traffic never competes
// with the pipelined rate-limit/cache/queue commands.
type Gateway struct {
	cmd    *redis.Client
	pubsub *redis.Client
	timeout time.Duration
}

func NewGateway(cmd, pubsub *redis.Client, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Gateway{cmd: cmd, pubsub: pubsub, timeout: timeout}
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var val string
	err := retryOp(ctx, func() error {
		v, err := g.cmd.Get(ctx, key).Result()
		val = v
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (g *Gateway) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return retryOp(ctx, func() error {
		return g.cmd.Set(ctx, key, value, ttl).Err()
	})
}

func (g *Gateway) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return retryOp(ctx, func() error {
		return g.cmd.Del(ctx, keys...).Err()
	})
}

func (g *Gateway) Incr(ctx context.Context, key string) (int64, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	var n int64
	err := retryOp(ctx, func() error {
		v, err := g.cmd.Incr(ctx, key).Result()
		n = v
		return err
	})
	return n, err
}

func (g *Gateway) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return retryOp(ctx, func() error {
		return g.cmd.Expire(ctx, key, ttl).Err()
	})
}

func (g *Gateway) HGet(ctx context.Context, key, field string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	var val string
	err := retryOp(ctx, func() error {
		v, err := g.cmd.HGet(ctx, key, field).Result()
		val = v
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (g *Gateway) HSet(ctx context.Context, key string, values map[string]any) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return retryOp(ctx, func() error {
		return g.cmd.HSet(ctx, key, values).Err()
	})
}

func (g *Gateway) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	var val map[string]string
	err := retryOp(ctx, func() error {
		v, err := g.cmd.HGetAll(ctx, key).Result()
		val = v
		return err
	})
	return val, err
}

func (g *Gateway) ZAdd(ctx context.Context, key string, score float64, member string) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return retryOp(ctx, func() error {
		return g.cmd.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
	})
}

func (g *Gateway) ZRemRangeByScore(ctx context.Context, key, min, max string) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return retryOp(ctx, func() error {
		return g.cmd.ZRemRangeByScore(ctx, key, min, max).Err()
	})
}

func (g *Gateway) ZCard(ctx context.Context, key string) (int64, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	var n int64
	err := retryOp(ctx, func() error {
		v, err := g.cmd.ZCard(ctx, key).Result()
		n = v
		return err
	})
	return n, err
}

func (g *Gateway) ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) ([]string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	var out []string
	err := retryOp(ctx, func() error {
		v, err := g.cmd.ZRangeByScore(ctx, key, opt).Result()
		out = v
		return err
	})
	return out, err
}

// ScanCursor is a restartable wrapper over redis SCAN, matching
// spec.md §4.2's "scan(pattern) as a restartable cursor".
type ScanCursor struct {
	client  *redis.Client
	pattern string
	cursor  uint64
	done    bool
}

func (g *Gateway) Scan(pattern string) *ScanCursor {
	return &ScanCursor{client: g.cmd, pattern: pattern}
}

func (c *ScanCursor) Next(ctx context.Context) ([]string, error) {
	if c.done {
		return nil, nil
	}
	var keys []string
	var cursor uint64
	err := retryOp(ctx, func() error {
		k, cur, err := c.client.Scan(ctx, c.cursor, c.pattern, 100).Result()
		keys, cursor = k, cur
		return err
	})
	if err != nil {
		return nil, err
	}
	c.cursor = cursor
	c.done = cursor == 0
	return keys, nil
}

func (c *ScanCursor) Done() bool { return c.done }

// Pipeline executes fn atomically server-side, matching spec.md §4.2. A
// retried attempt rebuilds the pipe from scratch: fn only ever queues
// commands, it never executes anything itself, so re-running it against
// a fresh TxPipeline on retry is safe.
func (g *Gateway) Pipeline(ctx context.Context, fn func(redis.Pipeliner) error) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	return retryOp(ctx, func() error {
		pipe := g.cmd.TxPipeline()
		if err := fn(pipe); err != nil {
			return err
		}
		_, err := pipe.Exec(ctx)
		return err
	})
}

func (g *Gateway) Raw() *redis.Client { return g.cmd }

func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return retryOp(ctx, func() error {
		return g.cmd.Ping(ctx).Err()
	})
}
