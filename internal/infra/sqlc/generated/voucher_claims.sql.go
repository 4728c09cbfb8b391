package generated

import (
	"context"

	"github.com/google/uuid"
)

const claimColumns = `id, user_id, code, status, request_id, ip, user_agent, device_id, claimed_at, refunded_at, refunded_by, refund_reason`

const insertClaim = `INSERT INTO voucher_claims (id, user_id, code, status, request_id, ip, user_agent, device_id, claimed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
RETURNING ` + claimColumns

func (q *Queries) InsertClaim(ctx context.Context, db DBTX, p InsertClaimParams) (VoucherClaims, error) {
	row := db.QueryRow(ctx, insertClaim, p.ID, p.UserID, p.Code, p.Status, p.RequestID, p.IP, p.UserAgent, p.DeviceID)
	return scanClaim(row)
}

type InsertClaimParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	Status    string
	RequestID string
	IP        any
	UserAgent any
	DeviceID  any
}

func scanClaim(row interface {
	Scan(dest ...any) error
}) (VoucherClaims, error) {
	var c VoucherClaims
	err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.Status, &c.RequestID, &c.IP, &c.UserAgent, &c.DeviceID, &c.ClaimedAt, &c.RefundedAt, &c.RefundedBy, &c.RefundReason)
	return c, err
}

const getClaimByRequestID = `SELECT ` + claimColumns + ` FROM voucher_claims WHERE request_id = $1`

func (q *Queries) GetClaimByRequestID(ctx context.Context, db DBTX, requestID string) (VoucherClaims, error) {
	row := db.QueryRow(ctx, getClaimByRequestID, requestID)
	return scanClaim(row)
}

const getClaimByIDForUpdate = `SELECT ` + claimColumns + ` FROM voucher_claims WHERE id = $1 FOR UPDATE`

// GetClaimByIDForUpdate is step 1 of the refund transaction (§4.9).
func (q *Queries) GetClaimByIDForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (VoucherClaims, error) {
	row := db.QueryRow(ctx, getClaimByIDForUpdate, id)
	return scanClaim(row)
}

const existsSuccessfulClaim = `SELECT EXISTS(SELECT 1 FROM voucher_claims WHERE user_id = $1 AND code = $2 AND status = 'success')`

// ExistsSuccessfulClaim is step 5 of the claim transaction, preserving
// invariant C2 (at most one success per (user, code)).
func (q *Queries) ExistsSuccessfulClaim(ctx context.Context, db DBTX, userID uuid.UUID, code string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, existsSuccessfulClaim, userID, code).Scan(&exists)
	return exists, err
}

const markClaimRefunded = `UPDATE voucher_claims
SET status = 'refunded', refunded_at = now(), refunded_by = $1, refund_reason = $2
WHERE id = $3`

// MarkClaimRefunded is step 2 of the refund transaction.
func (q *Queries) MarkClaimRefunded(ctx context.Context, db DBTX, refundedBy any, reason string, id uuid.UUID) error {
	_, err := db.Exec(ctx, markClaimRefunded, refundedBy, reason, id)
	return err
}

const listClaimsByUser = `SELECT ` + claimColumns + ` FROM voucher_claims WHERE user_id = $1 ORDER BY claimed_at DESC LIMIT $2 OFFSET $3`

func (q *Queries) ListClaimsByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit, offset int32) ([]VoucherClaims, error) {
	rows, err := db.Query(ctx, listClaimsByUser, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VoucherClaims
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
