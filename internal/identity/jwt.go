package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSigningSecret is returned by NewJWTVerifier when no secret is
// configured. Callers should skip the verifier entirely in that case and log
// the degraded mode once at startup.
var ErrNoSigningSecret = errors.New("jwt signing secret is not configured")

// JWTVerifier validates self-issued HS256 tokens signed with the server-side
// secret. It accepts the subject id from the standard sub claim, falling back
// to the user_id and id claims older tokens carried.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for self-issued tokens. Returns
// ErrNoSigningSecret when secret is empty.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, ErrNoSigningSecret
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

// Name implements Verifier.
func (v *JWTVerifier) Name() string { return "self-issued-jwt" }

// Verify implements Verifier.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token verification: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}

	subjectID := claimString(claims, "sub")
	if subjectID == "" {
		subjectID = claimString(claims, "user_id")
	}
	if subjectID == "" {
		subjectID = claimString(claims, "id")
	}
	if subjectID == "" {
		return nil, errors.New("token carries no subject id")
	}

	return &Identity{
		SubjectID: subjectID,
		Email:     claimString(claims, "email"),
		Name:      claimString(claims, "name"),
		Role:      claimString(claims, "role"),
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
