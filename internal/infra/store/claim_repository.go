package store

import (
	"context"

	"gin-clean-starter/internal/domain/claim"
	"gin-clean-starter/internal/infra"
	sqlc "gin-clean-starter/internal/infra/sqlc/generated"
	"gin-clean-starter/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type ClaimRepository struct {
	db sqlc.DBTX
	q  *sqlc.Queries
}

// Insert is step 8 of the claim transaction (§4.8).
func (r *ClaimRepository) Insert(ctx context.Context, c *claim.Claim) (*claim.Claim, error) {
	row, err := r.q.InsertClaim(ctx, r.db, sqlc.InsertClaimParams{
		ID:        c.ID(),
		UserID:    c.UserID(),
		Code:      c.Code(),
		Status:    string(c.Status()),
		RequestID: c.RequestID(),
		IP:        nullableText(c.Metadata().IP),
		UserAgent: nullableText(c.Metadata().UserAgent),
		DeviceID:  nullableText(c.Metadata().DeviceID),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to insert claim", err)
	}
	return hydrateClaim(row)
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *ClaimRepository) GetByRequestID(ctx context.Context, requestID string) (*claim.Claim, error) {
	row, err := r.q.GetClaimByRequestID(ctx, r.db, requestID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("claim not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find claim by request id", err)
	}
	return hydrateClaim(row)
}

// GetForUpdate is step 1 of the refund transaction (§4.9).
func (r *ClaimRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*claim.Claim, error) {
	row, err := r.q.GetClaimByIDForUpdate(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("claim not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock claim row", err)
	}
	return hydrateClaim(row)
}

// ExistsSuccessful is step 5 of the claim transaction, preserving
// invariant C2.
func (r *ClaimRepository) ExistsSuccessful(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	exists, err := r.q.ExistsSuccessfulClaim(ctx, r.db, userID, code)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check existing successful claim", err)
	}
	return exists, nil
}

// MarkRefunded is step 2 of the refund transaction.
func (r *ClaimRepository) MarkRefunded(ctx context.Context, id uuid.UUID, by *uuid.UUID, reason string) error {
	var byArg any
	if by != nil {
		byArg = *by
	}
	if err := r.q.MarkClaimRefunded(ctx, r.db, byArg, reason, id); err != nil {
		return infra.WrapRepoErr("failed to mark claim refunded", err)
	}
	return nil
}

func (r *ClaimRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]*claim.Claim, error) {
	rows, err := r.q.ListClaimsByUser(ctx, r.db, userID, limit, offset)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list claims by user", err)
	}

	out := make([]*claim.Claim, 0, len(rows))
	for _, row := range rows {
		c, err := hydrateClaim(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func hydrateClaim(row sqlc.VoucherClaims) (*claim.Claim, error) {
	return claim.Hydrate(
		row.ID, row.UserID, row.Code, claim.Status(row.Status), row.RequestID,
		claim.ClientMetadata{
			IP:        row.IP.String,
			UserAgent: row.UserAgent.String,
			DeviceID:  row.DeviceID.String,
		},
		pgconv.TimeFromPgtype(row.ClaimedAt),
		pgconv.TimePtrFromPgtype(row.RefundedAt),
		pgconv.UUIDPtrFromPgtype(row.RefundedBy),
		row.RefundReason.String,
	)
}
