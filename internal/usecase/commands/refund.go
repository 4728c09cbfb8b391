package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"gin-clean-starter/internal/domain/audit"
	"gin-clean-starter/internal/infra"
	"gin-clean-starter/internal/infra/cache"
	"gin-clean-starter/internal/infra/store"
	"gin-clean-starter/internal/pkg/claimerr"
	"gin-clean-starter/internal/pkg/clock"
)

// RefundInput is the Refund Coordinator's input (spec.md §4.9).
type RefundInput struct {
	ClaimID uuid.UUID
	Reason  string
	AdminID *uuid.UUID
}

type RefundCommands interface {
	Refund(ctx context.Context, in RefundInput) error
}

type refundCommandsImpl struct {
	gateway store.Store
	cache   claimCache
	clock   clock.Clock
}

func NewRefundCommands(gateway *store.Gateway, c *cache.Cache, clk clock.Clock) RefundCommands {
	return &refundCommandsImpl{gateway: gateway, cache: c, clock: clk}
}

// Refund implements spec.md §4.9 steps 1-6 verbatim.
func (r *refundCommandsImpl) Refund(ctx context.Context, in RefundInput) error {
	var ownerID uuid.UUID

	err := r.gateway.Transact(ctx, func(ctx context.Context, tx store.TxIface) error {
		// Step 1: lock the claim.
		c, err := tx.Claims().GetForUpdate(ctx, in.ClaimID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return claimerr.InvalidVoucher("claim-not-found")
			}
			return err
		}
		if c.IsRefunded() {
			return claimerr.InvalidVoucher("already-refunded")
		}

		ownerID = c.UserID()
		now := r.clock.Now()

		// Step 2: flip the claim to refunded.
		if err := c.MarkRefunded(in.AdminID, in.Reason, now); err != nil {
			return claimerr.InvalidVoucher("invalid-refund-transition")
		}
		if err := tx.Claims().MarkRefunded(ctx, c.ID(), in.AdminID, in.Reason); err != nil {
			return err
		}

		// Step 3: decrement the owner's claimed count, floored at 0.
		if err := tx.Users().DecrementClaimed(ctx, ownerID); err != nil {
			return err
		}

		// Step 4: decrement the code's usage count, floored at 0, and
		// flip is_used back off.
		vc, err := tx.Vouchers().GetByCode(ctx, c.Code())
		if err == nil {
			if err := tx.Vouchers().DecrementUsage(ctx, vc.ID()); err != nil {
				return err
			}
		} else if !infra.IsKind(err, infra.KindNotFound) {
			return err
		}

		// Step 5: append the refund audit record.
		metadata := map[string]any{"reason": in.Reason, "claim_id": c.ID()}
		if in.AdminID != nil {
			metadata["admin_id"] = *in.AdminID
		}
		entry := audit.NewEntry(ownerID, audit.ActionRefund, metadata, now)
		return tx.Audit().Insert(ctx, entry)
	})
	if err != nil {
		var ce *claimerr.Error
		if errors.As(err, &ce) {
			return err
		}
		return claimerr.Internal(err, "refund transaction failed")
	}

	// Step 6: invalidate the owner's cache entries on commit.
	if err := r.cache.InvalidateUser(ctx, ownerID.String()); err != nil {
		return nil // cache invalidation failure never undoes a committed refund
	}
	return nil
}
