package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neuralarc-ai/salak/internal/database/db"
	"github.com/neuralarc-ai/salak/internal/logging"
	"github.com/neuralarc-ai/salak/internal/metrics"
	"github.com/neuralarc-ai/salak/internal/vault"
)

// Errors
var (
	ErrKeyNotFound       = errors.New("api key not found")
	ErrKeyNameExists     = errors.New("an api key with this name already exists")
	ErrKeyAlreadyRevoked = errors.New("api key is already revoked")
)

// APIKeyService stores third-party API keys sealed under the master secret.
// Plaintext key material exists only transiently inside Create and Reveal.
type APIKeyService struct {
	queries *db.Queries
	pool    *pgxpool.Pool
	vault   *vault.Vault
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(pool *pgxpool.Pool, v *vault.Vault) *APIKeyService {
	return &APIKeyService{
		queries: db.New(pool),
		pool:    pool,
		vault:   v,
	}
}

// APIKey is the metadata view of a stored key. It never carries key
// material.
type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func dbKeyToAPIKey(k db.ApiKey) *APIKey {
	return &APIKey{
		ID:         k.ID,
		Name:       k.Name,
		IsActive:   k.IsActive,
		LastUsedAt: k.LastUsedAt,
		CreatedAt:  k.CreatedAt,
		UpdatedAt:  k.UpdatedAt,
	}
}

// Create seals the secret and stores it under the given name. Names are
// unique per user.
func (s *APIKeyService) Create(ctx context.Context, userID uuid.UUID, name, secret string) (*APIKey, error) {
	log := logging.Logger(ctx)

	exists, err := s.queries.ApiKeyNameExists(ctx, db.ApiKeyNameExistsParams{
		UserID: userID,
		Name:   name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check key name: %w", err)
	}
	if exists {
		return nil, ErrKeyNameExists
	}

	sealed, err := s.vault.Encrypt(secret)
	if err != nil {
		metrics.VaultOperations.WithLabelValues("encrypt", "error").Inc()
		return nil, fmt.Errorf("failed to seal api key: %w", err)
	}
	metrics.VaultOperations.WithLabelValues("encrypt", "success").Inc()

	dbKey, err := s.queries.CreateApiKey(ctx, db.CreateApiKeyParams{
		UserID:       userID,
		Name:         name,
		EncryptedKey: sealed.EncryptedKey,
		Iv:           sealed.IV,
		AuthTag:      sealed.AuthTag,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrKeyNameExists
		}
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}

	log.Info("api_key_created", "key_id", dbKey.ID, "user_id", userID)
	return dbKeyToAPIKey(dbKey), nil
}

// List returns all of the user's keys, newest first, metadata only.
func (s *APIKeyService) List(ctx context.Context, userID uuid.UUID) ([]*APIKey, error) {
	dbKeys, err := s.queries.ListApiKeysByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}

	keys := make([]*APIKey, 0, len(dbKeys))
	for _, k := range dbKeys {
		keys = append(keys, dbKeyToAPIKey(k))
	}
	return keys, nil
}

// Reveal decrypts a key's stored secret and records the access time. Revoked
// keys cannot be revealed.
func (s *APIKeyService) Reveal(ctx context.Context, userID, keyID uuid.UUID) (string, error) {
	log := logging.Logger(ctx)

	dbKey, err := s.queries.GetApiKey(ctx, db.GetApiKeyParams{ID: keyID, UserID: userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get api key: %w", err)
	}
	if !dbKey.IsActive {
		return "", ErrKeyNotFound
	}

	secret, err := s.vault.Decrypt(&vault.SealedKey{
		EncryptedKey: dbKey.EncryptedKey,
		IV:           dbKey.Iv,
		AuthTag:      dbKey.AuthTag,
	})
	if err != nil {
		metrics.VaultOperations.WithLabelValues("decrypt", "error").Inc()
		return "", fmt.Errorf("failed to unseal api key: %w", err)
	}
	metrics.VaultOperations.WithLabelValues("decrypt", "success").Inc()

	if err := s.queries.TouchApiKeyLastUsed(ctx, keyID); err != nil {
		// Revealing succeeded; a stale last_used_at is not worth failing for.
		log.Warn("api_key_touch_failed", "key_id", keyID, "error", err)
	}

	log.Info("api_key_revealed", "key_id", keyID, "user_id", userID)
	return secret, nil
}

// Revoke permanently deactivates a key. Revoking an already-revoked key is
// an error so clients notice double-revocation bugs.
func (s *APIKeyService) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	log := logging.Logger(ctx)

	affected, err := s.queries.RevokeApiKey(ctx, db.RevokeApiKeyParams{ID: keyID, UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing key from one already revoked.
		dbKey, err := s.queries.GetApiKey(ctx, db.GetApiKeyParams{ID: keyID, UserID: userID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrKeyNotFound
			}
			return fmt.Errorf("failed to get api key: %w", err)
		}
		if !dbKey.IsActive {
			return ErrKeyAlreadyRevoked
		}
		return ErrKeyNotFound
	}

	log.Info("api_key_revoked", "key_id", keyID, "user_id", userID)
	return nil
}

// CountActive reports active key rows, used by the metrics collector.
func (s *APIKeyService) CountActive(ctx context.Context) (int64, error) {
	return s.queries.CountActiveApiKeys(ctx)
}
