//go:build unit || e2e

package builder

import (
	"time"

	"gin-clean-starter/internal/domain/user"
	sqlc "gin-clean-starter/internal/infra/sqlc/generated"
	"gin-clean-starter/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserBuilder struct {
	Email        string
	PasswordHash string
	Role         string
	Claimed      int
	Limit        int
	Premium      bool
	IsActive     bool
	LastLogin    *time.Time
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		Role:         "customer",
		Claimed:      0,
		Limit:        3,
		Premium:      false,
		IsActive:     true,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

// Build methods
func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}

	if u.Claimed == 0 {
		return user.NewUser(email, u.PasswordHash, role, u.Limit)
	}

	now := time.Now()
	return user.Hydrate(uuid.New(), email, u.PasswordHash, role, u.Claimed, u.Limit, u.Premium, u.IsActive, u.LastLogin, now, now)
}

func (u *UserBuilder) BuildInfra() sqlc.Users {
	now := time.Now()
	var lastLogin pgtype.Timestamptz
	if u.LastLogin != nil {
		lastLogin = pgtype.Timestamptz{Time: *u.LastLogin, Valid: true}
	}

	return sqlc.Users{
		ID:           uuid.New(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Claimed:      int32(u.Claimed),
		Limit:        int32(u.Limit),
		Premium:      u.Premium,
		LastLogin:    lastLogin,
		IsActive:     u.IsActive,
		CreatedAt:    pgtype.Timestamptz{Time: now, Valid: true},
		UpdatedAt:    pgtype.Timestamptz{Time: now, Valid: true},
	}
}

func (u *UserBuilder) BuildReadModel() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       uuid.New(),
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// Fluent builder methods
func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithRole(role string) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	u.PasswordHash = hash
	return u
}

func (u *UserBuilder) WithLimit(limit int) *UserBuilder {
	u.Limit = limit
	return u
}

func (u *UserBuilder) WithClaimed(claimed int) *UserBuilder {
	u.Claimed = claimed
	return u
}

func (u *UserBuilder) WithPremium(premium bool) *UserBuilder {
	u.Premium = premium
	return u
}

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}
