package store

import (
	"context"

	"gin-clean-starter/internal/domain/user"
	"gin-clean-starter/internal/infra"
	sqlc "gin-clean-starter/internal/infra/sqlc/generated"
	"gin-clean-starter/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type UserRepository struct {
	db sqlc.DBTX
	q  *sqlc.Queries
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row, err := r.q.GetUserByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by id", err)
	}
	return hydrateUser(row)
}

// GetForUpdate is step 1 of the claim transaction (§4.8): locks the
// user row, filtered on active.
func (r *UserRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row, err := r.q.GetUserByIDForUpdate(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("active user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock user row", err)
	}
	return hydrateUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row, err := r.q.GetUserByEmail(ctx, r.db, email)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by email", err)
	}
	return hydrateUser(row)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	if err := r.q.UpdateUserLastLogin(ctx, r.db, id); err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}

func (r *UserRepository) IncrementClaimed(ctx context.Context, id uuid.UUID) error {
	if err := r.q.IncrementUserClaimed(ctx, r.db, id); err != nil {
		return infra.WrapRepoErr("failed to increment claimed count", err)
	}
	return nil
}

func (r *UserRepository) DecrementClaimed(ctx context.Context, id uuid.UUID) error {
	if err := r.q.DecrementUserClaimed(ctx, r.db, id); err != nil {
		return infra.WrapRepoErr("failed to decrement claimed count", err)
	}
	return nil
}

func hydrateUser(row sqlc.Users) (*user.User, error) {
	email, err := user.NewEmail(row.Email)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid persisted email", err)
	}
	role, err := user.NewRole(row.Role)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid persisted role", err)
	}

	return user.Hydrate(
		row.ID, email, row.PasswordHash, role,
		int(row.Claimed), int(row.Limit), row.Premium, row.IsActive,
		pgconv.TimePtrFromPgtype(row.LastLogin),
		pgconv.TimeFromPgtype(row.CreatedAt), pgconv.TimeFromPgtype(row.UpdatedAt),
	)
}
