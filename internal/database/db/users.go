package db

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUserParams are the inputs for CreateUser. A zero ID lets the
// database generate one; a provider-assigned subject id is passed through
// unchanged.
type CreateUserParams struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash *string
	Role         string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	if arg.ID == uuid.Nil {
		arg.ID = uuid.New()
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		arg.ID, arg.Email, arg.Name, arg.PasswordHash, arg.Role,
	)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

type UpdateUserProfileParams struct {
	ID   uuid.UUID
	Name string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.Name,
	)
	return scanUser(row)
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count)
	return count, err
}
