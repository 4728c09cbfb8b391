package commands

import (
	"context"
	"encoding/json"
	"time"

	"gin-clean-starter/internal/infra/cache"
	"gin-clean-starter/internal/infra/queue"
	"gin-clean-starter/internal/infra/ratelimit"
)

// claimCache is the subset of *cache.Cache the claim and refund
// coordinators depend on. Narrow and redis-free by construction, so a
// goroutine-fan-out unit test can substitute an in-memory fake without
// a Redis instance.
type claimCache interface {
	GetUser(ctx context.Context, userID string) (*cache.UserData, bool)
	PutUser(ctx context.Context, userID string, u *cache.UserData) error
	GetCount(ctx context.Context, userID string) (int, bool)
	PutCount(ctx context.Context, userID string, claimed int) error
	GetResult(ctx context.Context, requestID string) (json.RawMessage, bool)
	PutResult(ctx context.Context, requestID string, result any) error
	InvalidateUser(ctx context.Context, userID string) error
}

// rateLimiter is the subset of *ratelimit.Limiter the claim coordinator
// depends on.
type rateLimiter interface {
	UserWindow(ctx context.Context, userID string, max int, window time.Duration) (ratelimit.Decision, error)
	IPWindow(ctx context.Context, addr string, max int, window time.Duration) (ratelimit.Decision, error)
}

// claimQueue is the subset of *queue.Queue the claim coordinator's
// enqueue step depends on.
type claimQueue interface {
	Enqueue(ctx context.Context, job queue.Job) (string, error)
}
