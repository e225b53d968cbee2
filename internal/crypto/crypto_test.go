package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	if len(salt) != SaltSize {
		t.Errorf("GenerateSalt() returned salt of length %d, want %d", len(salt), SaltSize)
	}

	// Verify salts are random
	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() second call error = %v", err)
	}
	if bytes.Equal(salt, salt2) {
		t.Error("GenerateSalt() returned identical salts")
	}
}

func TestHashPassword_VerifyPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple", "Sup3rSecret"},
		{"empty", ""},
		{"unicode", "pässwörd-Ω1"},
		{"long", string(bytes.Repeat([]byte("x"), 200))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword() error = %v", err)
			}

			if !VerifyPassword(tt.password, hash) {
				t.Error("VerifyPassword() rejected the correct password")
			}
			if VerifyPassword(tt.password+"x", hash) {
				t.Error("VerifyPassword() accepted a wrong password")
			}
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	hash2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash1 == hash2 {
		t.Error("HashPassword() produced identical hashes for the same password")
	}
}

func TestHashPassword_Encoding(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		t.Fatalf("hash is not valid base64: %v", err)
	}
	if len(raw) != SaltSize+PasswordHashSize {
		t.Errorf("decoded hash length = %d, want %d", len(raw), SaltSize+PasswordHashSize)
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyPassword("password", tt.hash) {
				t.Error("VerifyPassword() accepted a malformed hash")
			}
		})
	}
}

func TestGenerateTokenString(t *testing.T) {
	token, err := GenerateTokenString(32)
	if err != nil {
		t.Fatalf("GenerateTokenString() error = %v", err)
	}

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not valid URL-safe base64: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("decoded token length = %d, want 32", len(raw))
	}

	token2, err := GenerateTokenString(32)
	if err != nil {
		t.Fatalf("GenerateTokenString() second call error = %v", err)
	}
	if token == token2 {
		t.Error("GenerateTokenString() returned identical tokens")
	}
}
