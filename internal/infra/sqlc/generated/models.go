package generated

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Users struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	Claimed      int32
	Limit        int32
	Premium      bool
	IsActive     bool
	LastLogin    pgtype.Timestamptz
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type VoucherCodes struct {
	ID           uuid.UUID
	Code         string
	Active       bool
	UsageLimit   int32
	UsageCount   int32
	IsUsed       bool
	UsedBy       pgtype.UUID
	UsedAt       pgtype.Timestamptz
	ValidFrom    pgtype.Timestamptz
	ExpiresAt    pgtype.Timestamptz
	AllowedUsers []byte // jsonb array of user ids, nil/empty means unrestricted
	AmountOff    pgtype.Numeric
	PercentOff   pgtype.Numeric
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type VoucherClaims struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Code         string
	Status       string
	RequestID    string
	IP           pgtype.Text
	UserAgent    pgtype.Text
	DeviceID     pgtype.Text
	ClaimedAt    pgtype.Timestamptz
	RefundedAt   pgtype.Timestamptz
	RefundedBy   pgtype.UUID
	RefundReason pgtype.Text
}

type VoucherAuditLog struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Action    string
	Metadata  []byte // jsonb
	CreatedAt pgtype.Timestamptz
}
