// Package crypto provides Argon2id password hashing and random token
// generation.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the per-password salt length in bytes.
	SaltSize = 16

	// PasswordHashSize is the Argon2id output length in bytes.
	PasswordHashSize = 32
)

// Argon2id parameters, tuned for an interactive login path.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

func derive(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, PasswordHashSize)
}

// GenerateSalt returns SaltSize cryptographically random bytes.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// HashPassword derives an Argon2id hash under a fresh salt and returns
// base64(salt || hash), the format stored in users.password_hash.
func HashPassword(password string) (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(
		append(salt, derive([]byte(password), salt)...)), nil
}

// VerifyPassword reports whether password matches an encoded hash produced
// by HashPassword. Malformed hashes verify as false, never as an error, so
// callers can't be tricked into a distinguishable failure path.
func VerifyPassword(password, encodedHash string) bool {
	raw, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil || len(raw) != SaltSize+PasswordHashSize {
		return false
	}
	want := raw[SaltSize:]
	got := derive([]byte(password), raw[:SaltSize])
	return subtle.ConstantTimeCompare(want, got) == 1
}

// GenerateTokenString returns length random bytes as URL-safe base64,
// suitable for secrets passed through environment variables.
func GenerateTokenString(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}
