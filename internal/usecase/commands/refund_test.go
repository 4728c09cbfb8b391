//go:build unit

package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gin-clean-starter/internal/domain/claim"
	"gin-clean-starter/internal/pkg/claimerr"
	"gin-clean-starter/internal/pkg/clock"
)

func newTestRefundCommands(fs *fakeStore, fc *fakeCache) *refundCommandsImpl {
	return &refundCommandsImpl{
		gateway: fs,
		cache:   fc,
		clock:   clock.NewMockClock(time.Now()),
	}
}

// Scenario 8 (spec.md): claim then refund round-trips both counters
// back to zero and leaves an audit trail behind.
func TestRefund_HappyPath_RoundTrip(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	u := seedUser(t, fs, 0, 5, false)
	v := seedVoucher(t, fs, "ROUNDTRIP-CODE1", 10)

	claimant := newTestClaimCommands(fs, fc)
	txResult, err := claimant.runClaimTransaction(context.Background(), u.id, "ROUNDTRIP-CODE1", "req-1", claim.ClientMetadata{}, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, u.claimed)
	require.Equal(t, 1, v.usageCount)

	refunder := newTestRefundCommands(fs, fc)
	err = refunder.Refund(context.Background(), RefundInput{ClaimID: txResult.claim.ID(), Reason: "customer request"})
	require.NoError(t, err)

	assert.Equal(t, 0, u.claimed)
	assert.Equal(t, 0, v.usageCount)
	assert.True(t, fs.claims[txResult.claim.ID()].IsRefunded())
	assert.GreaterOrEqual(t, len(fs.audit), 2, "claim and refund must each leave an audit row")
}

func TestRefund_AlreadyRefunded_Rejected(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	u := seedUser(t, fs, 0, 5, false)
	seedVoucher(t, fs, "DOUBLEREFUND-01", 10)

	claimant := newTestClaimCommands(fs, fc)
	txResult, err := claimant.runClaimTransaction(context.Background(), u.id, "DOUBLEREFUND-01", "req-1", claim.ClientMetadata{}, time.Now())
	require.NoError(t, err)

	refunder := newTestRefundCommands(fs, fc)
	require.NoError(t, refunder.Refund(context.Background(), RefundInput{ClaimID: txResult.claim.ID(), Reason: "first"}))

	err = refunder.Refund(context.Background(), RefundInput{ClaimID: txResult.claim.ID(), Reason: "second"})
	require.Error(t, err)
	assert.True(t, claimerr.IsKind(err, claimerr.KindInvalidVoucher))
}

func TestRefund_UnknownClaim_Rejected(t *testing.T) {
	fs := newFakeStore()
	fc := newFakeCache()
	refunder := newTestRefundCommands(fs, fc)

	err := refunder.Refund(context.Background(), RefundInput{ClaimID: uuid.New(), Reason: "n/a"})
	require.Error(t, err)
	assert.True(t, claimerr.IsKind(err, claimerr.KindInvalidVoucher))
}
