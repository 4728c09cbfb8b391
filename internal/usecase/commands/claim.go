package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gin-clean-starter/internal/domain/audit"
	"gin-clean-starter/internal/domain/claim"
	"gin-clean-starter/internal/domain/voucher"
	"gin-clean-starter/internal/infra"
	"gin-clean-starter/internal/infra/breaker"
	"gin-clean-starter/internal/infra/cache"
	"gin-clean-starter/internal/infra/queue"
	"gin-clean-starter/internal/infra/ratelimit"
	"gin-clean-starter/internal/infra/store"
	"gin-clean-starter/internal/pkg/claimerr"
	"gin-clean-starter/internal/pkg/clock"
)

// Rate-limit ceilings pinned by spec.md §4.6 steps 2-3.
const (
	userRateMax    = 10
	userRateWindow = 60 * time.Second
	ipRateMax      = 100
	ipRateWindow   = 60 * time.Second
)

// ClaimInput is the coordinator's input (spec.md §4.6): (userId, code,
// ip, userAgent, deviceId?, requestId).
type ClaimInput struct {
	UserID    uuid.UUID
	Code      string
	IP        string
	UserAgent string
	DeviceID  string
	RequestID string
}

// ClaimOutcome is the response shape the HTTP boundary serializes,
// shared by the synchronous (fast-path) and queued branches.
type ClaimOutcome struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	Status            string `json:"status,omitempty"`
	RequestID         string `json:"requestId,omitempty"`
	VouchersRemaining *int   `json:"vouchersRemaining,omitempty"`
}

// RateLimitInfo surfaces the per-user sliding-window decision so the
// HTTP boundary can set X-RateLimit-* (and Retry-After on 429) without
// the coordinator depending on net/http.
type RateLimitInfo struct {
	Present   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// ClaimCommands is the claim pipeline's synchronous front path (C7) plus
// the transactional body (C8) it shares with the worker pool.
type ClaimCommands interface {
	Claim(ctx context.Context, in ClaimInput) (*ClaimOutcome, RateLimitInfo, error)
	ProcessQueuedClaim(ctx context.Context, job queue.Job) (*ClaimOutcome, error)
}

type claimTxResult struct {
	claim     *claim.Claim
	claimed   int
	remaining int
}

type claimCommandsImpl struct {
	gateway store.Store
	cache   claimCache
	limiter rateLimiter
	queue   claimQueue
	breaker *breaker.Breaker
	clock   clock.Clock
}

func NewClaimCommands(gateway *store.Gateway, c *cache.Cache, limiter *ratelimit.Limiter, q *queue.Queue, b *breaker.Breaker, clk clock.Clock) ClaimCommands {
	return &claimCommandsImpl{gateway: gateway, cache: c, limiter: limiter, queue: q, breaker: b, clock: clk}
}

// Claim implements the eight-step algorithm of spec.md §4.6 verbatim.
func (c *claimCommandsImpl) Claim(ctx context.Context, in ClaimInput) (*ClaimOutcome, RateLimitInfo, error) {
	// Step 1: idempotency short-circuit.
	if raw, ok := c.cache.GetResult(ctx, in.RequestID); ok {
		var cached ClaimOutcome
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, RateLimitInfo{}, nil
		}
	}

	// Step 2: per-user sliding window.
	userDecision, err := c.limiter.UserWindow(ctx, in.UserID.String(), userRateMax, userRateWindow)
	if err != nil {
		return nil, RateLimitInfo{}, claimerr.Internal(err, "rate limiter unavailable")
	}
	rl := RateLimitInfo{Present: true, Limit: userRateMax, Remaining: userDecision.Remaining, ResetAt: userDecision.ResetAt}
	if !userDecision.Allowed {
		return nil, rl, claimerr.RateLimited()
	}

	// Step 3: per-IP fixed window.
	ipDecision, err := c.limiter.IPWindow(ctx, in.IP, ipRateMax, ipRateWindow)
	if err != nil {
		return nil, rl, claimerr.Internal(err, "rate limiter unavailable")
	}
	if !ipDecision.Allowed {
		return nil, rl, claimerr.RateLimited()
	}

	// Step 4: soft, non-authoritative limit pre-check.
	usr, err := c.loadUser(ctx, in.UserID)
	if err != nil {
		return nil, rl, claimerr.Internal(err, "failed to load user")
	}
	if cachedCount, ok := c.cache.GetCount(ctx, in.UserID.String()); ok && cachedCount >= usr.Limit() {
		return nil, rl, claimerr.LimitExceeded()
	}

	// Step 5: code format.
	if _, err := voucher.NewCode(in.Code); err != nil {
		return nil, rl, claimerr.InvalidVoucher("bad-format")
	}

	// Step 6: eligibility pre-check against a possibly stale read.
	now := c.clock.Now()
	vc, err := c.gateway.Vouchers().GetByCode(ctx, in.Code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, rl, claimerr.InvalidVoucher("unknown-code")
		}
		return nil, rl, claimerr.Internal(err, "failed to load voucher code")
	}
	if eligible, reason := vc.EligibleFor(in.UserID, now); !eligible {
		return nil, rl, claimerr.InvalidVoucher(string(reason))
	}

	metadata := claim.ClientMetadata{IP: in.IP, UserAgent: in.UserAgent, DeviceID: in.DeviceID}

	// Step 7: fast path for premium users, through the circuit breaker.
	if usr.Premium() {
		txResult, err := c.executeThroughBreaker(ctx, in.UserID, in.Code, in.RequestID, metadata, now)
		if err != nil {
			return nil, rl, err
		}

		outcome := &ClaimOutcome{
			Success:           true,
			Message:           "voucher claimed",
			VouchersRemaining: ptrInt(txResult.remaining),
		}
		if err := c.cache.PutResult(ctx, in.RequestID, outcome); err != nil {
			slog.WarnContext(ctx, "failed to cache claim result", "request_id", in.RequestID, "error", err)
		}
		return outcome, rl, nil
	}

	// Step 8: non-premium users are queued; the worker pool drains C6.
	_, err = c.queue.Enqueue(ctx, queue.Job{
		ID:        in.RequestID,
		UserID:    in.UserID.String(),
		Code:      in.Code,
		IP:        in.IP,
		UserAgent: in.UserAgent,
		DeviceID:  in.DeviceID,
	})
	if err != nil {
		return nil, rl, claimerr.Internal(err, "failed to enqueue claim")
	}

	return &ClaimOutcome{
		Success:   true,
		Message:   "claim queued",
		Status:    "pending",
		RequestID: in.RequestID,
	}, rl, nil
}

// ProcessQueuedClaim is the worker pool's entry point (C8): it runs the
// same transactional body as the fast path, directly (not through the
// breaker — the worker pool's own concurrency/rate caps are its
// back-pressure mechanism).
func (c *claimCommandsImpl) ProcessQueuedClaim(ctx context.Context, job queue.Job) (*ClaimOutcome, error) {
	userID, err := uuid.Parse(job.UserID)
	if err != nil {
		return nil, claimerr.Internal(err, "invalid job user id")
	}

	metadata := claim.ClientMetadata{IP: job.IP, UserAgent: job.UserAgent, DeviceID: job.DeviceID}
	txResult, err := c.runClaimTransaction(ctx, userID, job.Code, job.ID, metadata, c.clock.Now())
	if err != nil {
		return nil, err
	}

	outcome := &ClaimOutcome{
		Success:           true,
		Message:           "voucher claimed",
		VouchersRemaining: ptrInt(txResult.remaining),
	}
	if err := c.cache.PutResult(ctx, job.ID, outcome); err != nil {
		slog.WarnContext(ctx, "failed to cache claim result", "request_id", job.ID, "error", err)
	}
	return outcome, nil
}

// executeThroughBreaker isolates the circuit breaker's health accounting
// to true store failures: a domain rejection (limit reached, ineligible
// voucher) means the store call succeeded, so it must not count as a
// breaker failure even though it is still returned to the caller as an
// error.
func (c *claimCommandsImpl) executeThroughBreaker(ctx context.Context, userID uuid.UUID, code, requestID string, metadata claim.ClientMetadata, now time.Time) (*claimTxResult, error) {
	var domainErr error

	result, err := breaker.Execute(ctx, c.breaker, func(ctx context.Context) (*claimTxResult, error) {
		res, txErr := c.runClaimTransaction(ctx, userID, code, requestID, metadata, now)
		if txErr != nil {
			var ce *claimerr.Error
			if errors.As(txErr, &ce) && ce.Kind != claimerr.KindInternal {
				domainErr = txErr
				return nil, nil
			}
			return nil, txErr
		}
		return res, nil
	})
	if err != nil {
		if errors.Is(err, breaker.ErrOpen) {
			return nil, claimerr.Internal(err, "claim store circuit open")
		}
		return nil, err
	}
	if domainErr != nil {
		return nil, domainErr
	}
	return result, nil
}

// runClaimTransaction is the single source of truth for the claim
// transaction (spec.md §4.8 steps 1-9), invoked by both the fast path
// and the worker pool. A domain rejection (limit exceeded, ineligible
// voucher, already claimed) still commits — the audit row it writes
// must survive — so only a true store failure rolls the attempt back
// and triggers gateway.Transact's retry.
func (c *claimCommandsImpl) runClaimTransaction(ctx context.Context, userID uuid.UUID, code, requestID string, metadata claim.ClientMetadata, now time.Time) (*claimTxResult, error) {
	var result *claimTxResult
	var domainErr error

	err := c.gateway.Transact(ctx, func(ctx context.Context, tx store.TxIface) error {
		result, domainErr = c.executeClaimTx(ctx, tx, userID, code, requestID, metadata, now)
		if domainErr == nil {
			return nil
		}

		var ce *claimerr.Error
		if errors.As(domainErr, &ce) && ce.Kind != claimerr.KindInternal {
			return nil // commit whatever side effects (the audit row) already ran
		}
		return domainErr
	})
	if err != nil {
		return nil, claimerr.Internal(err, "claim transaction failed")
	}
	if domainErr != nil {
		return nil, domainErr
	}

	c.onClaimCommitted(ctx, userID, result.claimed)
	return result, nil
}

func (c *claimCommandsImpl) executeClaimTx(ctx context.Context, tx store.TxIface, userID uuid.UUID, code, requestID string, metadata claim.ClientMetadata, now time.Time) (*claimTxResult, error) {
	// Step 1: lock the user row.
	usr, err := tx.Users().GetForUpdate(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, claimerr.Internal(err, "authenticated user not found or inactive")
		}
		return nil, err
	}

	// Step 2: authoritative limit check.
	if usr.Claimed() >= usr.Limit() {
		entry := audit.NewEntry(userID, audit.ActionLimitReached, map[string]any{"code": code}, now)
		if err := tx.Audit().Insert(ctx, entry); err != nil {
			return nil, err
		}
		return nil, claimerr.LimitExceeded()
	}

	// Step 3: lock the voucher_code row, after the user row.
	vc, err := tx.Vouchers().GetByCodeForUpdate(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, claimerr.InvalidVoucher("unknown-code")
		}
		return nil, err
	}

	// Step 4: authoritative eligibility re-check.
	if eligible, reason := vc.EligibleFor(userID, now); !eligible {
		return nil, claimerr.InvalidVoucher(string(reason))
	}

	// Step 5: preserve invariant C2.
	exists, err := tx.Claims().ExistsSuccessful(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, claimerr.InvalidVoucher("already-claimed")
	}

	// Step 6-7: the counter updates.
	if err := tx.Users().IncrementClaimed(ctx, userID); err != nil {
		return nil, err
	}
	if err := tx.Vouchers().IncrementUsage(ctx, userID, vc.ID()); err != nil {
		return nil, err
	}

	// Step 8: the claim row.
	c1, err := claim.NewSuccess(userID, code, requestID, metadata, now)
	if err != nil {
		return nil, claimerr.Internal(err, "failed to build claim record")
	}
	inserted, err := tx.Claims().Insert(ctx, c1)
	if err != nil {
		return nil, err
	}

	entry := audit.NewEntry(userID, audit.ActionClaimed, map[string]any{"code": code, "claim_id": inserted.ID()}, now)
	if err := tx.Audit().Insert(ctx, entry); err != nil {
		return nil, err
	}

	return &claimTxResult{claim: inserted, claimed: usr.Claimed() + 1, remaining: usr.Limit() - (usr.Claimed() + 1)}, nil
}

// onClaimCommitted is step 9 of spec.md §4.8, run outside the
// transaction: cache writes only ever happen after commit.
func (c *claimCommandsImpl) onClaimCommitted(ctx context.Context, userID uuid.UUID, claimed int) {
	if err := c.cache.InvalidateUser(ctx, userID.String()); err != nil {
		slog.WarnContext(ctx, "failed to invalidate user cache", "user_id", userID, "error", err)
	}
	if err := c.cache.PutCount(ctx, userID.String(), claimed); err != nil {
		slog.WarnContext(ctx, "failed to refresh cached claim count", "user_id", userID, "error", err)
	}
}

// loadUser is the cache-or-store read spec.md §4.6 step 4 asks for.
func (c *claimCommandsImpl) loadUser(ctx context.Context, userID uuid.UUID) (*userSnapshot, error) {
	if data, ok := c.cache.GetUser(ctx, userID.String()); ok {
		return &userSnapshot{limit: data.Limit, claimed: data.Claimed, premium: data.Premium}, nil
	}

	usr, err := c.gateway.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.PutUser(ctx, userID.String(), &cache.UserData{
		ID: usr.ID().String(), Claimed: usr.Claimed(), Limit: usr.Limit(), Premium: usr.Premium(),
	}); err != nil {
		slog.WarnContext(ctx, "failed to cache user data", "user_id", userID, "error", err)
	}

	return &userSnapshot{limit: usr.Limit(), claimed: usr.Claimed(), premium: usr.Premium()}, nil
}

// userSnapshot is the subset of user.User the coordinator's pre-checks
// need, satisfied identically by a cache hit or a store read.
type userSnapshot struct {
	limit   int
	claimed int
	premium bool
}

func (s *userSnapshot) Limit() int   { return s.limit }
func (s *userSnapshot) Claimed() int { return s.claimed }
func (s *userSnapshot) Premium() bool { return s.premium }

func ptrInt(v int) *int { return &v }
