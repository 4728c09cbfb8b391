//go:build unit

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"gin-clean-starter/internal/domain/audit"
	"gin-clean-starter/internal/domain/claim"
	"gin-clean-starter/internal/domain/user"
	"gin-clean-starter/internal/domain/voucher"
	"gin-clean-starter/internal/infra"
	"gin-clean-starter/internal/infra/cache"
	"gin-clean-starter/internal/infra/ratelimit"
	"gin-clean-starter/internal/infra/store"
)

var errFakeNotFound = errors.New("fake: row not found")

// fakeUserRow and fakeVoucherRow hold the raw, mutable projection of the
// domain aggregates the fake store keeps: mutating a counter is a plain
// int increment, and a fresh domain object is rehydrated from the row
// whenever something reads it.
type fakeUserRow struct {
	id        uuid.UUID
	email     user.Email
	claimed   int
	limit     int
	premium   bool
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

type fakeVoucherRow struct {
	id           uuid.UUID
	code         voucher.Code
	active       bool
	usageLimit   int
	usageCount   int
	validFrom    *time.Time
	expiresAt    *time.Time
	allowedUsers []uuid.UUID
	discount     voucher.Discount
	createdAt    time.Time
	updatedAt    time.Time
}

// fakeStore is an in-memory stand-in for *store.Gateway. Every operation
// runs under a single mutex, held for the whole body of Transact, the
// same way a real Postgres row lock serializes two transactions that
// touch the same user or voucher row — good enough to prove the claim
// transaction's counting logic is exactly-once under concurrent
// goroutines, without a real database.
type fakeStore struct {
	mu sync.Mutex

	users       map[uuid.UUID]*fakeUserRow
	vouchers    map[string]*fakeVoucherRow
	claims      map[uuid.UUID]*claim.Claim
	claimsByReq map[string]*claim.Claim
	claimedPair map[string]struct{} // "userID|code" -> claimed successfully
	audit       []*audit.Entry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]*fakeUserRow),
		vouchers:    make(map[string]*fakeVoucherRow),
		claims:      make(map[uuid.UUID]*claim.Claim),
		claimsByReq: make(map[string]*claim.Claim),
		claimedPair: make(map[string]struct{}),
	}
}

func (s *fakeStore) addUser(row *fakeUserRow) {
	s.users[row.id] = row
}

func (s *fakeStore) addVoucher(row *fakeVoucherRow) {
	s.vouchers[row.code.String()] = row
}

func (s *fakeStore) hydrateUser(row *fakeUserRow) (*user.User, error) {
	return user.Hydrate(row.id, row.email, "hash", user.RoleCustomer, row.claimed, row.limit, row.premium, row.active, nil, row.createdAt, row.updatedAt)
}

func (s *fakeStore) hydrateVoucher(row *fakeVoucherRow) (*voucher.VoucherCode, error) {
	return voucher.Hydrate(row.id, row.code, row.active, row.usageLimit, row.usageCount, row.validFrom, row.expiresAt, row.allowedUsers, row.discount, row.createdAt, row.updatedAt)
}

func pairKey(userID uuid.UUID, code string) string {
	return userID.String() + "|" + code
}

// ---- non-transactional readers, matching store.Store ----

func (s *fakeStore) Users() store.UserReader       { return fakeUserReader{s} }
func (s *fakeStore) Vouchers() store.VoucherReader { return fakeVoucherReader{s} }
func (s *fakeStore) Claims() store.ClaimReader     { return fakeClaimReader{s} }

func (s *fakeStore) Transact(ctx context.Context, fn func(ctx context.Context, tx store.TxIface) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, fakeTx{s})
}

type fakeUserReader struct{ s *fakeStore }

func (r fakeUserReader) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", errFakeNotFound, infra.KindNotFound)
	}
	return r.s.hydrateUser(row)
}

type fakeVoucherReader struct{ s *fakeStore }

func (r fakeVoucherReader) GetByCode(ctx context.Context, code string) (*voucher.VoucherCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.vouchers[code]
	if !ok {
		return nil, infra.WrapRepoErr("voucher not found", errFakeNotFound, infra.KindNotFound)
	}
	return r.s.hydrateVoucher(row)
}

type fakeClaimReader struct{ s *fakeStore }

func (r fakeClaimReader) GetByRequestID(ctx context.Context, requestID string) (*claim.Claim, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.claimsByReq[requestID]
	if !ok {
		return nil, infra.WrapRepoErr("claim not found", errFakeNotFound, infra.KindNotFound)
	}
	return c, nil
}

func (r fakeClaimReader) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]*claim.Claim, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*claim.Claim
	for _, c := range r.s.claims {
		if c.UserID() == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ---- transactional accessors, matching store.TxIface. The caller
// (fakeStore.Transact) already holds s.mu, so these never lock. ----

type fakeTx struct{ s *fakeStore }

func (t fakeTx) Users() store.UserTxRepo       { return fakeTxUsers(t) }
func (t fakeTx) Vouchers() store.VoucherTxRepo { return fakeTxVouchers(t) }
func (t fakeTx) Claims() store.ClaimTxRepo     { return fakeTxClaims(t) }
func (t fakeTx) Audit() store.AuditTxRepo      { return fakeTxAudit(t) }

type fakeTxUsers struct{ s *fakeStore }

func (r fakeTxUsers) GetForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row, ok := r.s.users[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", errFakeNotFound, infra.KindNotFound)
	}
	return r.s.hydrateUser(row)
}

func (r fakeTxUsers) IncrementClaimed(ctx context.Context, id uuid.UUID) error {
	row, ok := r.s.users[id]
	if !ok {
		return infra.WrapRepoErr("user not found", errFakeNotFound, infra.KindNotFound)
	}
	row.claimed++
	return nil
}

func (r fakeTxUsers) DecrementClaimed(ctx context.Context, id uuid.UUID) error {
	row, ok := r.s.users[id]
	if !ok {
		return infra.WrapRepoErr("user not found", errFakeNotFound, infra.KindNotFound)
	}
	if row.claimed > 0 {
		row.claimed--
	}
	return nil
}

func (r fakeTxUsers) UpdateLastLogin(ctx context.Context, id uuid.UUID) error { return nil }

type fakeTxVouchers struct{ s *fakeStore }

func (r fakeTxVouchers) GetByCode(ctx context.Context, code string) (*voucher.VoucherCode, error) {
	row, ok := r.s.vouchers[code]
	if !ok {
		return nil, infra.WrapRepoErr("voucher not found", errFakeNotFound, infra.KindNotFound)
	}
	return r.s.hydrateVoucher(row)
}

func (r fakeTxVouchers) GetByCodeForUpdate(ctx context.Context, code string) (*voucher.VoucherCode, error) {
	return r.GetByCode(ctx, code)
}

func (r fakeTxVouchers) findByID(id uuid.UUID) *fakeVoucherRow {
	for _, row := range r.s.vouchers {
		if row.id == id {
			return row
		}
	}
	return nil
}

func (r fakeTxVouchers) IncrementUsage(ctx context.Context, claimedBy, codeID uuid.UUID) error {
	row := r.findByID(codeID)
	if row == nil {
		return infra.WrapRepoErr("voucher not found", errFakeNotFound, infra.KindNotFound)
	}
	row.usageCount++
	return nil
}

func (r fakeTxVouchers) DecrementUsage(ctx context.Context, codeID uuid.UUID) error {
	row := r.findByID(codeID)
	if row == nil {
		return infra.WrapRepoErr("voucher not found", errFakeNotFound, infra.KindNotFound)
	}
	if row.usageCount > 0 {
		row.usageCount--
	}
	return nil
}

type fakeTxClaims struct{ s *fakeStore }

func (r fakeTxClaims) ExistsSuccessful(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	_, ok := r.s.claimedPair[pairKey(userID, code)]
	return ok, nil
}

func (r fakeTxClaims) Insert(ctx context.Context, c *claim.Claim) (*claim.Claim, error) {
	r.s.claims[c.ID()] = c
	r.s.claimsByReq[c.RequestID()] = c
	if c.Status() == claim.StatusSuccess {
		r.s.claimedPair[pairKey(c.UserID(), c.Code())] = struct{}{}
	}
	return c, nil
}

func (r fakeTxClaims) GetForUpdate(ctx context.Context, id uuid.UUID) (*claim.Claim, error) {
	c, ok := r.s.claims[id]
	if !ok {
		return nil, infra.WrapRepoErr("claim not found", errFakeNotFound, infra.KindNotFound)
	}
	return c, nil
}

func (r fakeTxClaims) MarkRefunded(ctx context.Context, id uuid.UUID, by *uuid.UUID, reason string) error {
	c, ok := r.s.claims[id]
	if !ok {
		return infra.WrapRepoErr("claim not found", errFakeNotFound, infra.KindNotFound)
	}
	delete(r.s.claimedPair, pairKey(c.UserID(), c.Code()))
	return nil
}

type fakeTxAudit struct{ s *fakeStore }

func (r fakeTxAudit) Insert(ctx context.Context, entry *audit.Entry) error {
	r.s.audit = append(r.s.audit, entry)
	return nil
}

// fakeCache is an in-memory stand-in for *cache.Cache, satisfying
// claimCache. Every claim/refund test in this package uses one instead
// of a Redis-backed cache.Cache, since none of claimCache's methods
// leak a redis type that a fake would need a real connection to satisfy.
type fakeCache struct {
	mu      sync.Mutex
	users   map[string]*cache.UserData
	counts  map[string]int
	results map[string]json.RawMessage
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		users:   make(map[string]*cache.UserData),
		counts:  make(map[string]int),
		results: make(map[string]json.RawMessage),
	}
}

func (c *fakeCache) GetUser(ctx context.Context, userID string) (*cache.UserData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[userID]
	return u, ok
}

func (c *fakeCache) PutUser(ctx context.Context, userID string, u *cache.UserData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[userID] = u
	return nil
}

func (c *fakeCache) GetCount(ctx context.Context, userID string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[userID]
	return n, ok
}

func (c *fakeCache) PutCount(ctx context.Context, userID string, claimed int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID] = claimed
	return nil
}

func (c *fakeCache) GetResult(ctx context.Context, requestID string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[requestID]
	return r, ok
}

func (c *fakeCache) PutResult(ctx context.Context, requestID string, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[requestID] = raw
	return nil
}

func (c *fakeCache) InvalidateUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, userID)
	delete(c.counts, userID)
	return nil
}

// fakeLimiter is an in-memory stand-in for *ratelimit.Limiter,
// satisfying rateLimiter, always-allow by default so a test can focus
// on the store transaction instead of window arithmetic.
type fakeLimiter struct {
	mu      sync.Mutex
	allowed bool
}

func newFakeLimiter(allowed bool) *fakeLimiter {
	return &fakeLimiter{allowed: allowed}
}

func (l *fakeLimiter) UserWindow(ctx context.Context, userID string, max int, window time.Duration) (ratelimit.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	remaining := 0
	if l.allowed {
		remaining = max - 1
	}
	return ratelimit.Decision{Allowed: l.allowed, Remaining: remaining, ResetAt: time.Now().Add(window)}, nil
}

func (l *fakeLimiter) IPWindow(ctx context.Context, addr string, max int, window time.Duration) (ratelimit.Decision, error) {
	return l.UserWindow(ctx, addr, max, window)
}
