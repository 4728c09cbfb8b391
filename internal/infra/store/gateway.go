// Package store is the Persistent Store Gateway (C1): pooled access to
// Postgres, a query escape hatch for simple reads, and a transact
// operation with retry-on-serialization-failure. Adapted for real from
// the teacher's dormant usecase/shared.RunInTxWithRetry and tx_manager,
// which existed in the teacher repo but were never wired into main.
package store

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	sqlc "gin-clean-starter/internal/infra/sqlc/generated"
	"gin-clean-starter/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTransactionBegin    = errs.New("failed to begin transaction")
	ErrTransactionCommit   = errs.New("failed to commit transaction")
	ErrMaxRetriesExceeded  = errs.New("transaction failed after max retries")
)

const maxTransactAttempts = 3

// Tx exposes typed repository accessors lazily constructed over the same
// pgx.Tx, mirroring the teacher's pgTx. Repositories hold no state of
// their own; they are thin method sets over the shared sqlc.DBTX.
type Tx struct {
	pgtx sqlc.DBTX

	users    *UserRepository
	vouchers *VoucherRepository
	claims   *ClaimRepository
	audit    *AuditRepository
}

func newTx(pgtx sqlc.DBTX) *Tx {
	return &Tx{pgtx: pgtx}
}

func (t *Tx) DB() sqlc.DBTX { return t.pgtx }

func (t *Tx) Users() UserTxRepo {
	if t.users == nil {
		t.users = &UserRepository{db: t.pgtx, q: sqlc.New()}
	}
	return t.users
}

func (t *Tx) Vouchers() VoucherTxRepo {
	if t.vouchers == nil {
		t.vouchers = &VoucherRepository{db: t.pgtx, q: sqlc.New()}
	}
	return t.vouchers
}

func (t *Tx) Claims() ClaimTxRepo {
	if t.claims == nil {
		t.claims = &ClaimRepository{db: t.pgtx, q: sqlc.New()}
	}
	return t.claims
}

func (t *Tx) Audit() AuditTxRepo {
	if t.audit == nil {
		t.audit = &AuditRepository{db: t.pgtx, q: sqlc.New()}
	}
	return t.audit
}

type Gateway struct {
	pool *pgxpool.Pool
	q    *sqlc.Queries
}

func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool, q: sqlc.New()}
}

// Query is the escape hatch for simple reads outside a transaction.
func (g *Gateway) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return g.pool.Query(ctx, sql, args...)
}

// Users and Vouchers give the coordinator's non-authoritative pre-checks
// (spec.md §4.6 steps 4 and 6) a plain read path over the pool, without
// opening a transaction or holding a row lock.
func (g *Gateway) Users() UserReader       { return &UserRepository{db: g.pool, q: g.q} }
func (g *Gateway) Vouchers() VoucherReader { return &VoucherRepository{db: g.pool, q: g.q} }

// Claims gives the read side (queries.VoucherQueries) a plain read path
// over the pool, the same way Users()/Vouchers() do.
func (g *Gateway) Claims() ClaimReader { return &ClaimRepository{db: g.pool, q: g.q} }

// Health issues a trivial round-trip and swallows the error, returning a
// boolean the way spec.md §4.1 asks for.
func (g *Gateway) Health(ctx context.Context) bool {
	var one int
	err := g.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
	return err == nil && one == 1
}

// Transact begins a pgx.Tx at ReadCommitted, runs fn, commits on nil
// error, rolls back otherwise, and runs the whole attempt up to
// maxTransactAttempts times in total, with jittered backoff between
// attempts, when the underlying error is 40001 (serialization_failure)
// or 40P01 (deadlock_detected) — this is the store gateway's only retry
// policy; domain errors returned by fn are never retried.
func (g *Gateway) Transact(ctx context.Context, fn func(ctx context.Context, tx TxIface) error) error {
	var lastErr error

	for attempt := 0; attempt < maxTransactAttempts; attempt++ {
		if attempt > 0 {
			backoff := jitteredBackoff(attempt)
			slog.WarnContext(ctx, "retrying transaction after retryable store error",
				"attempt", attempt+1, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := g.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	return errs.Mark(lastErr, ErrMaxRetriesExceeded)
}

func (g *Gateway) runOnce(ctx context.Context, fn func(ctx context.Context, tx TxIface) error) error {
	pgtx, err := g.pool.Begin(ctx)
	if err != nil {
		return errs.Mark(err, ErrTransactionBegin)
	}

	defer func() {
		if rbErr := pgtx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "failed to rollback transaction", "error", rbErr)
		}
	}()

	if err := fn(ctx, newTx(pgtx)); err != nil {
		return err
	}

	if err := pgtx.Commit(ctx); err != nil {
		return errs.Mark(err, ErrTransactionCommit)
	}

	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01":
		return true
	default:
		return false
	}
}

func jitteredBackoff(attempt int) time.Duration {
	base := time.Duration(attempt) * 50 * time.Millisecond
	jitter := time.Duration(rand.IntN(50)) * time.Millisecond
	return base + jitter
}
