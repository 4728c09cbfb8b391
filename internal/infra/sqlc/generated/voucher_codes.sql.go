package generated

import (
	"context"

	"github.com/google/uuid"
)

const voucherCodeColumns = `id, code, active, usage_limit, usage_count, is_used, used_by, used_at, valid_from, expires_at, allowed_users, amount_off, percent_off, created_at, updated_at`

const getVoucherCodeByCode = `SELECT ` + voucherCodeColumns + ` FROM voucher_codes WHERE code = $1`

func (q *Queries) GetVoucherCodeByCode(ctx context.Context, db DBTX, code string) (VoucherCodes, error) {
	row := db.QueryRow(ctx, getVoucherCodeByCode, code)
	return scanVoucherCode(row)
}

const getVoucherCodeByCodeForUpdate = `SELECT ` + voucherCodeColumns + ` FROM voucher_codes WHERE code = $1 FOR UPDATE`

// GetVoucherCodeByCodeForUpdate is step 3 of the claim transaction (§4.8):
// locks the voucher_codes row after the user row, preserving the
// invariant user -> voucher_code lock order.
func (q *Queries) GetVoucherCodeByCodeForUpdate(ctx context.Context, db DBTX, code string) (VoucherCodes, error) {
	row := db.QueryRow(ctx, getVoucherCodeByCodeForUpdate, code)
	return scanVoucherCode(row)
}

func scanVoucherCode(row interface {
	Scan(dest ...any) error
}) (VoucherCodes, error) {
	var v VoucherCodes
	err := row.Scan(
		&v.ID, &v.Code, &v.Active, &v.UsageLimit, &v.UsageCount, &v.IsUsed, &v.UsedBy, &v.UsedAt,
		&v.ValidFrom, &v.ExpiresAt, &v.AllowedUsers, &v.AmountOff, &v.PercentOff, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

const incrementVoucherUsage = `UPDATE voucher_codes
SET usage_count = usage_count + 1,
    is_used = (usage_count + 1 >= usage_limit),
    used_by = CASE WHEN usage_limit = 1 THEN $1 ELSE used_by END,
    used_at = CASE WHEN usage_limit = 1 THEN now() ELSE used_at END,
    updated_at = now()
WHERE id = $2`

// IncrementVoucherUsage is step 7 of the claim transaction, exactly as
// specified: is_used flips eagerly when the cap is reached by this
// transaction, and used_by/used_at are set only for single-use codes.
func (q *Queries) IncrementVoucherUsage(ctx context.Context, db DBTX, claimedBy, codeID uuid.UUID) error {
	_, err := db.Exec(ctx, incrementVoucherUsage, claimedBy, codeID)
	return err
}

const decrementVoucherUsage = `UPDATE voucher_codes SET usage_count = GREATEST(usage_count - 1, 0), is_used = false, updated_at = now() WHERE id = $1`

// DecrementVoucherUsage is step 4 of the refund transaction.
func (q *Queries) DecrementVoucherUsage(ctx context.Context, db DBTX, codeID uuid.UUID) error {
	_, err := db.Exec(ctx, decrementVoucherUsage, codeID)
	return err
}
