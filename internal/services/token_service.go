package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neuralarc-ai/salak/internal/identity"
)

// TokenService mints self-issued HS256 session tokens for locally
// authenticated users. The claims mirror what the verifier on the other side
// of the round trip expects.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must match the one the
// resolver's JWT verifier is configured with.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Enabled reports whether self-issued tokens can be minted.
func (s *TokenService) Enabled() bool {
	return len(s.secret) > 0
}

// Issue signs a session token for the given user.
func (s *TokenService) Issue(user *identity.AuthenticatedUser) (string, error) {
	if !s.Enabled() {
		return "", identity.ErrNoSigningSecret
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// TTL returns the configured token lifetime, used to set cookie expiry.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
