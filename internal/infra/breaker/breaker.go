// Package breaker implements the Circuit Breaker (C3) guarding the
// store: Closed/Open/Half-Open, exactly as spec.md §4.3.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	FailureThreshold int
	SuccessThreshold int
	CallTimeout      time.Duration
	OpenDuration     time.Duration
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		CallTimeout:      60 * time.Second,
		OpenDuration:     30 * time.Second,
	}
}

// Breaker wraps any callable with failure-threshold + half-open probe
// semantics. Counters and state are guarded by a single mutex; calls in
// Closed run outside the lock — the lock is held only to read/update
// counters before and after the call returns, per spec.md §4.3/§5.
type Breaker struct {
	cfg Config

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	nextAttempt time.Time
}

func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg, state: StateClosed}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs fn under the breaker's current state. In Open state it
// rejects immediately until now >= nextAttempt, at which point it
// transitions to Half-Open and lets this call through as a probe. While
// Half-Open, every call is let through until record closes or reopens
// the breaker.
func Execute[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if !b.allow() {
		return zero, ErrOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	defer cancel()

	result, err := fn(callCtx)
	b.record(err == nil)
	return result, err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Now().Before(b.nextAttempt) {
			return false
		}
		b.state = StateHalfOpen
		b.successes = 0
		return true
	default:
		return true
	}
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		if success {
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.state = StateClosed
				b.failures = 0
				b.successes = 0
			}
			return
		}
		b.toOpen()
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.toOpen()
		}
	case StateOpen:
		// A call should not reach here; allow() gates it. No-op.
	}
}

func (b *Breaker) toOpen() {
	b.state = StateOpen
	b.failures = 0
	b.successes = 0
	b.nextAttempt = time.Now().Add(b.cfg.OpenDuration)
}
