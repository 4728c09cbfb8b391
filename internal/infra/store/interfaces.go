package store

import (
	"context"

	"gin-clean-starter/internal/domain/audit"
	"gin-clean-starter/internal/domain/claim"
	"gin-clean-starter/internal/domain/user"
	"gin-clean-starter/internal/domain/voucher"

	"github.com/google/uuid"
)

// UserReader is the plain, non-locking user read Gateway.Users() exposes.
type UserReader interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// VoucherReader is the plain, non-locking voucher read Gateway.Vouchers()
// exposes.
type VoucherReader interface {
	GetByCode(ctx context.Context, code string) (*voucher.VoucherCode, error)
}

// ClaimReader is the plain claim read Gateway.Claims() exposes.
type ClaimReader interface {
	GetByRequestID(ctx context.Context, requestID string) (*claim.Claim, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]*claim.Claim, error)
}

// UserTxRepo is the locked, mutating user access a transaction body uses.
type UserTxRepo interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error)
	IncrementClaimed(ctx context.Context, id uuid.UUID) error
	DecrementClaimed(ctx context.Context, id uuid.UUID) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// VoucherTxRepo is the locked, mutating voucher access a transaction body
// uses.
type VoucherTxRepo interface {
	GetByCode(ctx context.Context, code string) (*voucher.VoucherCode, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*voucher.VoucherCode, error)
	IncrementUsage(ctx context.Context, claimedBy, codeID uuid.UUID) error
	DecrementUsage(ctx context.Context, codeID uuid.UUID) error
}

// ClaimTxRepo is the locked, mutating claim access a transaction body uses.
type ClaimTxRepo interface {
	ExistsSuccessful(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	Insert(ctx context.Context, c *claim.Claim) (*claim.Claim, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*claim.Claim, error)
	MarkRefunded(ctx context.Context, id uuid.UUID, by *uuid.UUID, reason string) error
}

// AuditTxRepo is the append-only audit write a transaction body uses.
type AuditTxRepo interface {
	Insert(ctx context.Context, entry *audit.Entry) error
}

// TxIface is the accessor set a transaction body sees, satisfied by *Tx.
// The claim and refund coordinators depend on this, not the concrete
// type, so a goroutine-fan-out test can substitute an in-memory fake
// that emulates row-level locking without a real Postgres instance.
type TxIface interface {
	Users() UserTxRepo
	Vouchers() VoucherTxRepo
	Claims() ClaimTxRepo
	Audit() AuditTxRepo
}

// Store is the gateway surface the usecase layer depends on, satisfied
// by *Gateway. Declared here, next to Tx/Gateway, because Transact's
// callback signature must name TxIface directly.
type Store interface {
	Users() UserReader
	Vouchers() VoucherReader
	Claims() ClaimReader
	Transact(ctx context.Context, fn func(ctx context.Context, tx TxIface) error) error
}
