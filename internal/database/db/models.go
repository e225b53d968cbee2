package db

import (
	"time"

	"github.com/google/uuid"
)

// User is a row in the users table. PasswordHash is nil for accounts that
// only ever authenticate through the hosted provider.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash *string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApiKey is a row in the api_keys table. The key material lives only in the
// three sealed columns; the plaintext is never stored.
type ApiKey struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	EncryptedKey string
	Iv           string
	AuthTag      string
	IsActive     bool
	LastUsedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SystemLog is a row in the system_logs table.
type SystemLog struct {
	ID        uuid.UUID
	Level     string
	Action    string
	UserID    *uuid.UUID
	Details   []byte
	CreatedAt time.Time
}
