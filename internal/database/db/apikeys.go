package db

import (
	"context"

	"github.com/google/uuid"
)

const apiKeyColumns = `id, user_id, name, encrypted_key, iv, auth_tag, is_active, last_used_at, created_at, updated_at`

func scanApiKey(row interface{ Scan(...any) error }) (ApiKey, error) {
	var k ApiKey
	err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.EncryptedKey, &k.Iv, &k.AuthTag,
		&k.IsActive, &k.LastUsedAt, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}

type CreateApiKeyParams struct {
	UserID       uuid.UUID
	Name         string
	EncryptedKey string
	Iv           string
	AuthTag      string
}

func (q *Queries) CreateApiKey(ctx context.Context, arg CreateApiKeyParams) (ApiKey, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO api_keys (user_id, name, encrypted_key, iv, auth_tag)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+apiKeyColumns,
		arg.UserID, arg.Name, arg.EncryptedKey, arg.Iv, arg.AuthTag,
	)
	return scanApiKey(row)
}

type GetApiKeyParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// GetApiKey fetches a key scoped to its owner. Other users' keys are
// indistinguishable from absent ones.
func (q *Queries) GetApiKey(ctx context.Context, arg GetApiKeyParams) (ApiKey, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+apiKeyColumns+` FROM api_keys
		WHERE id = $1 AND user_id = $2`,
		arg.ID, arg.UserID,
	)
	return scanApiKey(row)
}

func (q *Queries) ListApiKeysByUser(ctx context.Context, userID uuid.UUID) ([]ApiKey, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+apiKeyColumns+` FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []ApiKey
	for rows.Next() {
		k, err := scanApiKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type ApiKeyNameExistsParams struct {
	UserID uuid.UUID
	Name   string
}

func (q *Queries) ApiKeyNameExists(ctx context.Context, arg ApiKeyNameExistsParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM api_keys WHERE user_id = $1 AND name = $2)`,
		arg.UserID, arg.Name,
	).Scan(&exists)
	return exists, err
}

type RevokeApiKeyParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// RevokeApiKey deactivates a key. The row count tells the caller whether the
// key existed and was still active.
func (q *Queries) RevokeApiKey(ctx context.Context, arg RevokeApiKeyParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE api_keys SET is_active = false, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND is_active = true`,
		arg.ID, arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) TouchApiKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE api_keys SET last_used_at = now() WHERE id = $1`, id)
	return err
}

func (q *Queries) CountActiveApiKeys(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM api_keys WHERE is_active = true`).Scan(&count)
	return count, err
}
