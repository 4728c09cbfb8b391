package store

import (
	"context"
	"encoding/json"

	"gin-clean-starter/internal/domain/voucher"
	"gin-clean-starter/internal/infra"
	sqlc "gin-clean-starter/internal/infra/sqlc/generated"
	"gin-clean-starter/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type VoucherRepository struct {
	db sqlc.DBTX
	q  *sqlc.Queries
}

func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*voucher.VoucherCode, error) {
	row, err := r.q.GetVoucherCodeByCode(ctx, r.db, code)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("voucher code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find voucher code", err)
	}
	return hydrateVoucher(row)
}

// GetByCodeForUpdate is step 3 of the claim transaction (§4.8): locks
// the voucher_codes row after the user row is already locked.
func (r *VoucherRepository) GetByCodeForUpdate(ctx context.Context, code string) (*voucher.VoucherCode, error) {
	row, err := r.q.GetVoucherCodeByCodeForUpdate(ctx, r.db, code)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("voucher code not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock voucher code row", err)
	}
	return hydrateVoucher(row)
}

func (r *VoucherRepository) IncrementUsage(ctx context.Context, claimedBy, codeID uuid.UUID) error {
	if err := r.q.IncrementVoucherUsage(ctx, r.db, claimedBy, codeID); err != nil {
		return infra.WrapRepoErr("failed to increment voucher usage", err)
	}
	return nil
}

func (r *VoucherRepository) DecrementUsage(ctx context.Context, codeID uuid.UUID) error {
	if err := r.q.DecrementVoucherUsage(ctx, r.db, codeID); err != nil {
		return infra.WrapRepoErr("failed to decrement voucher usage", err)
	}
	return nil
}

func hydrateVoucher(row sqlc.VoucherCodes) (*voucher.VoucherCode, error) {
	code, err := voucher.NewCode(row.Code)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid persisted voucher code", err)
	}

	var allowedUsers []uuid.UUID
	if len(row.AllowedUsers) > 0 {
		if err := json.Unmarshal(row.AllowedUsers, &allowedUsers); err != nil {
			return nil, infra.WrapRepoErr("invalid persisted allowed_users", err)
		}
	}

	discount, err := discountFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid persisted discount", err)
	}

	return voucher.Hydrate(
		row.ID, code, row.Active, int(row.UsageLimit), int(row.UsageCount),
		pgconv.TimePtrFromPgtype(row.ValidFrom), pgconv.TimePtrFromPgtype(row.ExpiresAt),
		allowedUsers, discount,
		pgconv.TimeFromPgtype(row.CreatedAt), pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}

func discountFromRow(row sqlc.VoucherCodes) (voucher.Discount, error) {
	if row.AmountOff.Valid {
		amount := pgconv.NumericToDecimal(row.AmountOff)
		return voucher.NewFixedDiscount(amount)
	}
	percent := pgconv.NumericToDecimal(row.PercentOff)
	return voucher.NewPercentageDiscount(percent)
}
