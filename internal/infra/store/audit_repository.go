package store

import (
	"context"
	"encoding/json"

	"gin-clean-starter/internal/domain/audit"
	"gin-clean-starter/internal/infra"
	sqlc "gin-clean-starter/internal/infra/sqlc/generated"

	"github.com/google/uuid"
)

type AuditRepository struct {
	db sqlc.DBTX
	q  *sqlc.Queries
}

// Insert is the append-only write performed by the claim transaction
// (success, limit-reached) and the refund transaction, never read by
// the core itself.
func (r *AuditRepository) Insert(ctx context.Context, entry *audit.Entry) error {
	metadata, err := json.Marshal(entry.Metadata())
	if err != nil {
		return infra.WrapRepoErr("failed to marshal audit metadata", err)
	}

	if err := r.q.InsertAuditEntry(ctx, r.db, entry.ID(), entry.UserID(), string(entry.Action()), metadata); err != nil {
		return infra.WrapRepoErr("failed to insert audit entry", err)
	}
	return nil
}

func (r *AuditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int32) ([]*audit.Entry, error) {
	rows, err := r.q.ListAuditByUser(ctx, r.db, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list audit entries", err)
	}

	out := make([]*audit.Entry, 0, len(rows))
	for _, row := range rows {
		var metadata map[string]any
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
				return nil, infra.WrapRepoErr("invalid persisted audit metadata", err)
			}
		}
		out = append(out, audit.NewEntry(row.UserID, audit.Action(row.Action), metadata, row.CreatedAt.Time))
	}
	return out, nil
}
