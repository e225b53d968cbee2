package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "test-signing-secret-for-unit-tests"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewJWTVerifier_RequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier("")
	assert.ErrorIs(t, err, ErrNoSigningSecret)

	v, err := NewJWTVerifier(testSigningSecret)
	require.NoError(t, err)
	assert.Equal(t, "self-issued-jwt", v.Name())
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	v, err := NewJWTVerifier(testSigningSecret)
	require.NoError(t, err)

	token := signToken(t, testSigningSecret, jwt.MapClaims{
		"sub":   "user-123",
		"email": "u@example.com",
		"name":  "U Example",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	ident, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", ident.SubjectID)
	assert.Equal(t, "u@example.com", ident.Email)
	assert.Equal(t, "U Example", ident.Name)
	assert.Equal(t, "admin", ident.Role)
}

func TestJWTVerifier_SubjectClaimFallbacks(t *testing.T) {
	v, err := NewJWTVerifier(testSigningSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"sub preferred", jwt.MapClaims{"sub": "a", "user_id": "b", "id": "c"}, "a"},
		{"user_id fallback", jwt.MapClaims{"user_id": "b", "id": "c"}, "b"},
		{"id fallback", jwt.MapClaims{"id": "c"}, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.claims["exp"] = time.Now().Add(time.Hour).Unix()
			ident, err := v.Verify(context.Background(), signToken(t, testSigningSecret, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ident.SubjectID)
		})
	}
}

func TestJWTVerifier_Rejections(t *testing.T) {
	v, err := NewJWTVerifier(testSigningSecret)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt-at-all-but-long-enough"},
		{"wrong secret", signToken(t, "a-different-secret-entirely", jwt.MapClaims{"sub": "x", "exp": future})},
		{"expired", signToken(t, testSigningSecret, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"no subject claim", signToken(t, testSigningSecret, jwt.MapClaims{"email": "x@example.com", "exp": future})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			assert.Error(t, err)
		})
	}
}
