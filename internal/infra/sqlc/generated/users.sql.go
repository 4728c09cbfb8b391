package generated

import (
	"context"

	"github.com/google/uuid"
)

const getUserByID = `SELECT id, email, password_hash, role, claimed, "limit", premium, is_active, last_login, created_at, updated_at
FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, db DBTX, id uuid.UUID) (Users, error) {
	row := db.QueryRow(ctx, getUserByID, id)
	var u Users
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Claimed, &u.Limit, &u.Premium, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByIDForUpdate = `SELECT id, email, password_hash, role, claimed, "limit", premium, is_active, last_login, created_at, updated_at
FROM users WHERE id = $1 AND is_active FOR UPDATE`

// GetUserByIDForUpdate is step 1 of the claim transaction (§4.8): locks
// the user row and filters on active in the same statement.
func (q *Queries) GetUserByIDForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (Users, error) {
	row := db.QueryRow(ctx, getUserByIDForUpdate, id)
	var u Users
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Claimed, &u.Limit, &u.Premium, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `SELECT id, email, password_hash, role, claimed, "limit", premium, is_active, last_login, created_at, updated_at
FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, db DBTX, email string) (Users, error) {
	row := db.QueryRow(ctx, getUserByEmail, email)
	var u Users
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Claimed, &u.Limit, &u.Premium, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const incrementUserClaimed = `UPDATE users SET claimed = claimed + 1, updated_at = now() WHERE id = $1`

// IncrementUserClaimed is step 6 of the claim transaction.
func (q *Queries) IncrementUserClaimed(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, incrementUserClaimed, id)
	return err
}

const decrementUserClaimed = `UPDATE users SET claimed = GREATEST(claimed - 1, 0), updated_at = now() WHERE id = $1`

// DecrementUserClaimed is step 3 of the refund transaction.
func (q *Queries) DecrementUserClaimed(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, decrementUserClaimed, id)
	return err
}

const updateUserLastLogin = `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`

func (q *Queries) UpdateUserLastLogin(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, updateUserLastLogin, id)
	return err
}
