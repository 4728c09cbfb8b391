package user

import (
	"time"

	"github.com/google/uuid"
)

// User is both the authenticated identity (email/passwordHash/role, used
// by the auth boundary pinned in spec §1) and the voucher-claim subject:
// claimed/limit/premium/active are mutated only by the claim and refund
// transactions, never directly. Invariant U1: 0 <= claimed <= limit.
type User struct {
	id           uuid.UUID
	email        Email
	passwordHash string
	role         Role
	claimed      int
	limit        int
	premium      bool
	active       bool
	lastLogin    *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func NewUser(email Email, passwordHash string, role Role, limit int) (*User, error) {
	if limit <= 0 {
		return nil, ErrNonPositiveLimit
	}

	return &User{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		limit:        limit,
		active:       true,
	}, nil
}

// Hydrate reconstructs a User from a persisted row. Unlike NewUser it does
// not mint a fresh id and accepts a claimed count above zero.
func Hydrate(
	id uuid.UUID,
	email Email,
	passwordHash string,
	role Role,
	claimed, limit int,
	premium, active bool,
	lastLogin *time.Time,
	createdAt, updatedAt time.Time,
) (*User, error) {
	if claimed < 0 {
		return nil, ErrNegativeClaimed
	}
	if limit <= 0 {
		return nil, ErrNonPositiveLimit
	}
	if claimed > limit {
		return nil, ErrClaimedExceedsLimit
	}

	return &User{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		claimed:      claimed,
		limit:        limit,
		premium:      premium,
		active:       active,
		lastLogin:    lastLogin,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// HasRoomToClaim is the soft, non-authoritative form of invariant U1. The
// authoritative check happens on the locked row inside the claim
// transaction (see usecase/commands.runClaimTransaction). Only tests call
// it; the coordinator's soft pre-check compares a cached claimed count
// against the limit instead.
func (u *User) HasRoomToClaim() bool {
	return u.claimed < u.limit
}

func (u *User) ID() uuid.UUID         { return u.id }
func (u *User) Email() Email          { return u.email }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) Role() Role            { return u.role }
func (u *User) Claimed() int          { return u.claimed }
func (u *User) Limit() int            { return u.limit }
func (u *User) Premium() bool         { return u.premium }
func (u *User) IsActive() bool        { return u.active }
func (u *User) LastLogin() *time.Time { return u.lastLogin }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
