// Package vault encrypts user-supplied API keys at rest using AES-256-GCM.
//
// The cipher key is derived from an operator-chosen master secret with a
// single SHA-256 pass, so the secret can be any non-empty string. Every
// encryption generates a fresh random 12-byte nonce; ciphertext, nonce and
// authentication tag are returned as three separate base64 fields that must
// be stored and presented together.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// KeySize is the size of the derived AES-256 key in bytes.
	KeySize = 32

	// NonceSize is the size of GCM nonces in bytes.
	NonceSize = 12

	// TagSize is the size of GCM authentication tags in bytes.
	TagSize = 16
)

// SealedKey is the encrypted form of an API key. The three fields are
// produced by one Encrypt call and are all required for Decrypt; a record
// holding only a subset is invalid.
type SealedKey struct {
	EncryptedKey string `json:"encrypted_key"`
	IV           string `json:"iv"`
	AuthTag      string `json:"auth_tag"`
}

// Vault performs authenticated encryption of API keys. It is stateless and
// safe for concurrent use.
type Vault struct {
	masterSecret string
}

// New creates a Vault with the given master secret. An empty secret is
// allowed at construction so the server can start in degraded mode; Encrypt
// and Decrypt report ErrNotConfigured until a secret is set.
func New(masterSecret string) *Vault {
	return &Vault{masterSecret: masterSecret}
}

// deriveKey hashes the master secret down to the exact AES-256 key length.
func (v *Vault) deriveKey() ([]byte, error) {
	if strings.TrimSpace(v.masterSecret) == "" {
		return nil, ErrNotConfigured
	}
	key := sha256.Sum256([]byte(v.masterSecret))
	return key[:], nil
}

// Encrypt encrypts plaintext and returns the sealed triple. Input is
// validated before any cipher primitive is invoked.
func (v *Vault) Encrypt(plaintext string) (*SealedKey, error) {
	if strings.TrimSpace(plaintext) == "" {
		return nil, fmt.Errorf("%w: plaintext must not be empty", ErrInvalidInput)
	}

	key, err := v.deriveKey()
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce generation: %v", ErrEncryptionFailed, err)
	}

	// Seal appends tag to ciphertext; split them so the record stores the
	// tag as its own field.
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	return &SealedKey{
		EncryptedKey: base64.StdEncoding.EncodeToString(ciphertext),
		IV:           base64.StdEncoding.EncodeToString(nonce),
		AuthTag:      base64.StdEncoding.EncodeToString(tag),
	}, nil
}

// Decrypt reverses Encrypt. All three fields are validated (presence, base64
// encoding, decoded lengths) before the cipher is invoked. Tag verification
// failure reports ErrDecryptionFailed regardless of whether the key was wrong
// or the data was tampered with.
func (v *Vault) Decrypt(sealed *SealedKey) (string, error) {
	if sealed == nil {
		return "", fmt.Errorf("%w: sealed key is required", ErrInvalidInput)
	}

	ciphertext, err := decodeField("encrypted_key", sealed.EncryptedKey)
	if err != nil {
		return "", err
	}
	nonce, err := decodeField("iv", sealed.IV)
	if err != nil {
		return "", err
	}
	tag, err := decodeField("auth_tag", sealed.AuthTag)
	if err != nil {
		return "", err
	}

	if len(nonce) != NonceSize {
		return "", fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidInput, NonceSize, len(nonce))
	}
	if len(tag) != TagSize {
		return "", fmt.Errorf("%w: auth_tag must be %d bytes, got %d", ErrInvalidInput, TagSize, len(tag))
	}

	key, err := v.deriveKey()
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func decodeField(name, value string) ([]byte, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64", ErrInvalidInput, name)
	}
	return decoded, nil
}
