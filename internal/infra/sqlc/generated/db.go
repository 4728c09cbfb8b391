// Package generated holds hand-authored SQL access code shaped like a
// sqlc-generated package: a DBTX interface any *pgx.Conn/*pgxpool.Pool/
// pgx.Tx satisfies, and a Queries struct exposing one method per
// statement. Kept separate from internal/infra/store so the store
// gateway's transaction plumbing and the SQL statements themselves can
// evolve independently, mirroring the teacher's split between
// infra/uow and infra/sqlc/generated.
package generated

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct{}

func New() *Queries {
	return &Queries{}
}
