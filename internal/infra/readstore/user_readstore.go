// Package readstore adapts the sqlc-generated queries directly to the
// queries.UserReadStore port, without going through the infra/store
// Gateway — store.Gateway's own read side (queries.VoucherQueries)
// already depends on infra/store, so a UserReadStore living in package
// store and depending on the queries package would form an import
// cycle.
package readstore

import (
	"context"

	"gin-clean-starter/internal/infra"
	sqlc "gin-clean-starter/internal/infra/sqlc/generated"
	"gin-clean-starter/internal/pkg/pgconv"
	"gin-clean-starter/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserReadStore adapts the DB pool to the queries.UserReadStore port the
// teacher's CQRS read side expects, without a separate read-optimized
// table — voucher-claim has no read/write skew wide enough to justify one.
type UserReadStore struct {
	pool *pgxpool.Pool
	q    *sqlc.Queries
}

func NewUserReadStore(pool *pgxpool.Pool) *UserReadStore {
	return &UserReadStore{pool: pool, q: sqlc.New()}
}

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	row, err := s.q.GetUserByID(ctx, s.pool, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by id", err)
	}
	return toAuthorizedUserView(row), nil
}

func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	row, err := s.q.GetUserByEmail(ctx, s.pool, email)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}
	return toAuthorizedUserView(row), row.PasswordHash, nil
}

func toAuthorizedUserView(row sqlc.Users) *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       row.ID,
		Email:    row.Email,
		Role:     row.Role,
		IsActive: row.IsActive,
	}
}
