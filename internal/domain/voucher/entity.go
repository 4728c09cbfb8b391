package voucher

import (
	"time"

	"github.com/google/uuid"
)

// Reason is the precise ineligibility cause for invariant V2, surfaced by
// EligibleFor so the claim transaction can fail with INVALID_VOUCHER and a
// specific reason rather than a bare boolean.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonInactive       Reason = "inactive"
	ReasonExhausted      Reason = "usage-limit-reached"
	ReasonNotYetValid    Reason = "not-yet-valid"
	ReasonExpired        Reason = "expired"
	ReasonNotAllowedUser Reason = "not-allowed-user"
)

// VoucherCode is the claimable code, distinct from the storefront Coupon
// this package generalizes: it carries a usage cap shared across every
// user (invariant V1) and an optional allow-list restricting who may
// claim it at all.
type VoucherCode struct {
	id            uuid.UUID
	code          Code
	active        bool
	usageLimit    int
	usageCount    int
	validFrom     *time.Time
	expiresAt     *time.Time
	allowedUsers  map[uuid.UUID]struct{}
	discount      Discount
	createdAt     time.Time
	updatedAt     time.Time
}

func NewVoucherCode(
	code Code,
	usageLimit int,
	validFrom, expiresAt *time.Time,
	allowedUsers []uuid.UUID,
	discount Discount,
) (*VoucherCode, error) {
	if usageLimit <= 0 {
		return nil, ErrNonPositiveUsageLimit
	}
	if validFrom != nil && expiresAt != nil && !expiresAt.After(*validFrom) {
		return nil, ErrExpiresBeforeValidFrom
	}

	return &VoucherCode{
		id:           uuid.New(),
		code:         code,
		active:       true,
		usageLimit:   usageLimit,
		validFrom:    validFrom,
		expiresAt:    expiresAt,
		allowedUsers: toAllowedSet(allowedUsers),
		discount:     discount,
	}, nil
}

// Hydrate reconstructs a VoucherCode from a persisted row.
func Hydrate(
	id uuid.UUID,
	code Code,
	active bool,
	usageLimit, usageCount int,
	validFrom, expiresAt *time.Time,
	allowedUsers []uuid.UUID,
	discount Discount,
	createdAt, updatedAt time.Time,
) (*VoucherCode, error) {
	if usageLimit <= 0 {
		return nil, ErrNonPositiveUsageLimit
	}
	if usageCount < 0 {
		return nil, ErrNegativeUsageCount
	}
	if usageCount > usageLimit {
		return nil, ErrUsageCountExceedsLimit
	}
	if validFrom != nil && expiresAt != nil && !expiresAt.After(*validFrom) {
		return nil, ErrExpiresBeforeValidFrom
	}

	return &VoucherCode{
		id:           id,
		code:         code,
		active:       active,
		usageLimit:   usageLimit,
		usageCount:   usageCount,
		validFrom:    validFrom,
		expiresAt:    expiresAt,
		allowedUsers: toAllowedSet(allowedUsers),
		discount:     discount,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func toAllowedSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// EligibleFor implements invariant V2 exactly: active, under the usage
// cap, within the validity window, and (when restricted) claimable by
// this user. Called twice per claim attempt — once against a possibly
// stale read outside the transaction (§4.6 step 6) and once
// authoritatively against the locked row (§4.8 step 4) — both calls go
// through this single predicate so the two checks never diverge.
func (v *VoucherCode) EligibleFor(userID uuid.UUID, now time.Time) (bool, Reason) {
	if !v.active {
		return false, ReasonInactive
	}
	if v.usageCount >= v.usageLimit {
		return false, ReasonExhausted
	}
	if v.validFrom != nil && now.Before(*v.validFrom) {
		return false, ReasonNotYetValid
	}
	if v.expiresAt != nil && !now.Before(*v.expiresAt) {
		return false, ReasonExpired
	}
	if v.allowedUsers != nil {
		if _, ok := v.allowedUsers[userID]; !ok {
			return false, ReasonNotAllowedUser
		}
	}
	return true, ReasonNone
}

// IsUsedUpBy reports whether incrementing usageCount by one would reach
// usageLimit, the eager is_used flip from §4.8 step 7.
func (v *VoucherCode) IsUsedUpBy(nextCount int) bool {
	return nextCount >= v.usageLimit
}

func (v *VoucherCode) ID() uuid.UUID             { return v.id }
func (v *VoucherCode) Code() Code                { return v.code }
func (v *VoucherCode) Active() bool              { return v.active }
func (v *VoucherCode) UsageLimit() int           { return v.usageLimit }
func (v *VoucherCode) UsageCount() int           { return v.usageCount }
func (v *VoucherCode) ValidFrom() *time.Time     { return v.validFrom }
func (v *VoucherCode) ExpiresAt() *time.Time     { return v.expiresAt }
func (v *VoucherCode) Discount() Discount        { return v.discount }
func (v *VoucherCode) CreatedAt() time.Time      { return v.createdAt }
func (v *VoucherCode) UpdatedAt() time.Time      { return v.updatedAt }

func (v *VoucherCode) IsAllowedUser(userID uuid.UUID) bool {
	if v.allowedUsers == nil {
		return true
	}
	_, ok := v.allowedUsers[userID]
	return ok
}
