// Package worker is the Claim Worker (C8): it drains the Claim Queue
// (internal/infra/queue), running the same transactional body the
// synchronous fast path uses, for the non-premium claims spec.md §4.6
// step 8 defers to it.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"gin-clean-starter/internal/infra/queue"
	"gin-clean-starter/internal/pkg/claimerr"
	"gin-clean-starter/internal/pkg/config"
	"gin-clean-starter/internal/usecase/commands"
)

const (
	dequeueTimeout   = 2 * time.Second
	promoteInterval  = time.Second
	jobContextBudget = 10 * time.Second
)

// Pool bounds concurrency with a weighted semaphore and the per-second
// throughput with a token bucket, per spec.md §4.7's worker concurrency
// and per-second cap knobs.
type Pool struct {
	queue  *queue.Queue
	claims commands.ClaimCommands
	sem    *semaphore.Weighted
	rate   *rate.Limiter

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(q *queue.Queue, claims commands.ClaimCommands, cfg config.QueueConfig) *Pool {
	concurrency := cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 50
	}
	perSecond := cfg.PerSecondCap
	if perSecond <= 0 {
		perSecond = 100
	}

	return &Pool{
		queue:  q,
		claims: claims,
		sem:    semaphore.NewWeighted(int64(concurrency)),
		rate:   rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

// Start launches the dispatch loop and the delayed-job promotion loop.
// Both stop when ctx is canceled or Stop is called.
func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(2)
	go p.dispatchLoop(ctx)
	go p.promoteLoop(ctx)
}

// Stop cancels both loops and waits for in-flight jobs to release their
// semaphore weight.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Pool) dispatchLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.ErrorContext(ctx, "worker dequeue failed", "error", err)
			continue
		}
		if job == nil {
			continue // BLPOP timed out; loop back and check ctx again
		}

		if err := p.rate.Wait(ctx); err != nil {
			return
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}

		p.wg.Add(1)
		go func(j queue.Job) {
			defer p.wg.Done()
			defer p.sem.Release(1)
			p.process(ctx, j)
		}(*job)
	}
}

// process runs one job to completion with its own bounded context, per
// spec.md §5's "never context.Background() for I/O".
func (p *Pool) process(parent context.Context, job queue.Job) {
	ctx, cancel := context.WithTimeout(parent, jobContextBudget)
	defer cancel()

	outcome, err := p.claims.ProcessQueuedClaim(ctx, job)
	if err == nil {
		if err := p.queue.Complete(ctx, job.ID, outcome); err != nil {
			slog.ErrorContext(ctx, "worker failed to record completion", "job_id", job.ID, "error", err)
		}
		return
	}

	var ce *claimerr.Error
	if errors.As(err, &ce) && ce.Kind != claimerr.KindInternal {
		// Domain rejection: permanent, not retried.
		if err := p.queue.Fail(ctx, job.ID, err.Error()); err != nil {
			slog.ErrorContext(ctx, "worker failed to record domain failure", "job_id", job.ID, "error", err)
		}
		return
	}

	slog.WarnContext(ctx, "worker job failed, scheduling retry", "job_id", job.ID, "attempt", job.Attempts, "error", err)
	if err := p.queue.Retry(ctx, job, err.Error()); err != nil {
		slog.ErrorContext(ctx, "worker failed to schedule retry", "job_id", job.ID, "error", err)
	}
}

func (p *Pool) promoteLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(promoteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := p.queue.PromoteDelayed(ctx); err != nil {
				slog.ErrorContext(ctx, "worker promote-delayed failed", "error", err)
			} else if n > 0 {
				slog.DebugContext(ctx, "promoted delayed claims", "count", n)
			}
		}
	}
}
