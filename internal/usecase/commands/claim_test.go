//go:build unit

package commands

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gin-clean-starter/internal/domain/claim"
	"gin-clean-starter/internal/domain/user"
	"gin-clean-starter/internal/domain/voucher"
	"gin-clean-starter/internal/infra/breaker"
	"gin-clean-starter/internal/infra/queue"
	"gin-clean-starter/internal/pkg/claimerr"
	"gin-clean-starter/internal/pkg/clock"
)

func newTestClaimCommands(fs *fakeStore, fc *fakeCache) *claimCommandsImpl {
	return &claimCommandsImpl{
		gateway: fs,
		cache:   fc,
		limiter: newFakeLimiter(true),
		queue:   nil,
		breaker: breaker.New(breaker.DefaultConfig()),
		clock:   clock.NewMockClock(time.Now()),
	}
}

func mustEmail(t *testing.T, s string) user.Email {
	t.Helper()
	e, err := user.NewEmail(s)
	require.NoError(t, err)
	return e
}

func mustCode(t *testing.T, s string) voucher.Code {
	t.Helper()
	c, err := voucher.NewCode(s)
	require.NoError(t, err)
	return c
}

func seedUser(t *testing.T, fs *fakeStore, claimed, limit int, premium bool) *fakeUserRow {
	t.Helper()
	row := &fakeUserRow{
		id:        uuid.New(),
		email:     mustEmail(t, fmt.Sprintf("%s@example.com", uuid.New())),
		claimed:   claimed,
		limit:     limit,
		premium:   premium,
		active:    true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	fs.addUser(row)
	return row
}

func seedVoucher(t *testing.T, fs *fakeStore, code string, usageLimit int) *fakeVoucherRow {
	t.Helper()
	row := &fakeVoucherRow{
		id:         uuid.New(),
		code:       mustCode(t, code),
		active:     true,
		usageLimit: usageLimit,
		discount:   mustDiscount(t),
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	fs.addVoucher(row)
	return row
}

func mustDiscount(t *testing.T) voucher.Discount {
	t.Helper()
	d, err := voucher.NewPercentageDiscount(decimal.NewFromInt(10))
	require.NoError(t, err)
	return d
}

// Scenario 3 (spec.md): a user already at their claim limit is rejected
// with LIMIT_EXCEEDED on a single attempt, and the rejection is
// audited rather than silently dropped.
func TestProcessQueuedClaim_LimitReached(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	u := seedUser(t, fs, 5, 5, false)
	seedVoucher(t, fs, "LIMITED-CODE-01", 100)

	c := newTestClaimCommands(fs, fc)

	_, err := c.ProcessQueuedClaim(context.Background(), queue.Job{
		ID:     uuid.New().String(),
		UserID: u.id.String(),
		Code:   "LIMITED-CODE-01",
	})

	require.Error(t, err)
	assert.True(t, claimerr.IsKind(err, claimerr.KindLimitExceeded))
	require.Len(t, fs.audit, 1)
	assert.Equal(t, u.claimed, 5, "a rejected attempt must not touch the counter")
}

// Scenario 4 (spec.md): 20 goroutines race to claim 20 distinct codes
// for one user capped at 10. Exactly 10 must succeed and exactly 10
// must fail with LIMIT_EXCEEDED — the row lock inside the transaction
// is the only thing standing between this and a blown limit.
func TestProcessQueuedClaim_ConcurrentSameUser_LimitEnforced(t *testing.T) {
	const limit = 10
	const attempts = 20

	fs := newFakeStore()
	fc := newFakeCache()
	u := seedUser(t, fs, 0, limit, false)
	for i := 0; i < attempts; i++ {
		seedVoucher(t, fs, fmt.Sprintf("CONCURRENT-CODE-%02d", i), 100)
	}

	c := newTestClaimCommands(fs, fc)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, limitExceeded := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.ProcessQueuedClaim(context.Background(), queue.Job{
				ID:     uuid.New().String(),
				UserID: u.id.String(),
				Code:   fmt.Sprintf("CONCURRENT-CODE-%02d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if claimerr.IsKind(err, claimerr.KindLimitExceeded) {
				limitExceeded++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, limit, successes)
	assert.Equal(t, attempts-limit, limitExceeded)
	assert.Equal(t, limit, u.claimed, "the counter must land exactly at the limit, never above")
}

// Scenario 5 (spec.md): two different users race the same code with
// usage_limit=1. Exactly one must win; the other must see the code as
// exhausted, never a double-claim.
func TestProcessQueuedClaim_ConcurrentSameCode_ExactlyOneWinner(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	u1 := seedUser(t, fs, 0, 5, false)
	u2 := seedUser(t, fs, 0, 5, false)
	seedVoucher(t, fs, "SCARCE-CODE-01", 1)

	c := newTestClaimCommands(fs, fc)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, ineligible := 0, 0

	for _, uid := range []uuid.UUID{u1.id, u2.id} {
		wg.Add(1)
		go func(uid uuid.UUID) {
			defer wg.Done()
			_, err := c.ProcessQueuedClaim(context.Background(), queue.Job{
				ID:     uuid.New().String(),
				UserID: uid.String(),
				Code:   "SCARCE-CODE-01",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if claimerr.IsKind(err, claimerr.KindInvalidVoucher) {
				ineligible++
			}
		}(uid)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, ineligible)

	v := fs.vouchers["SCARCE-CODE-01"]
	assert.Equal(t, 1, v.usageCount)
}

// A duplicate request id against the same (user, code) pair after a
// successful claim is rejected as already-claimed (invariant C2), not
// silently re-applied.
func TestExecuteClaimTx_DuplicateAfterSuccess_Rejected(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	u := seedUser(t, fs, 0, 5, false)
	seedVoucher(t, fs, "REPEAT-CODE-01", 100)

	c := newTestClaimCommands(fs, fc)

	metadata := claim.ClientMetadata{IP: "127.0.0.1"}
	now := time.Now()

	_, err := c.runClaimTransaction(context.Background(), u.id, "REPEAT-CODE-01", "req-1", metadata, now)
	require.NoError(t, err)

	_, err = c.runClaimTransaction(context.Background(), u.id, "REPEAT-CODE-01", "req-2", metadata, now)
	require.Error(t, err)
	assert.True(t, claimerr.IsKind(err, claimerr.KindInvalidVoucher))
	assert.Equal(t, 1, u.claimed, "the second attempt on the same pair must not increment the counter again")
}
