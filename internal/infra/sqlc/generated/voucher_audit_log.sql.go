package generated

import (
	"context"

	"github.com/google/uuid"
)

const insertAuditEntry = `INSERT INTO voucher_audit_log (id, user_id, action, metadata, created_at)
VALUES ($1, $2, $3, $4, now())`

func (q *Queries) InsertAuditEntry(ctx context.Context, db DBTX, id, userID uuid.UUID, action string, metadata []byte) error {
	_, err := db.Exec(ctx, insertAuditEntry, id, userID, action, metadata)
	return err
}

const listAuditByUser = `SELECT id, user_id, action, metadata, created_at FROM voucher_audit_log WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

func (q *Queries) ListAuditByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int32) ([]VoucherAuditLog, error) {
	rows, err := db.Query(ctx, listAuditByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VoucherAuditLog
	for rows.Next() {
		var a VoucherAuditLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
