package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuralarc-ai/salak/internal/identity"
)

func TestTokenService_Enabled(t *testing.T) {
	assert.False(t, NewTokenService("", time.Hour).Enabled())
	assert.True(t, NewTokenService("secret", time.Hour).Enabled())
}

func TestTokenService_IssueWithoutSecret(t *testing.T) {
	s := NewTokenService("", time.Hour)

	_, err := s.Issue(&identity.AuthenticatedUser{ID: "u1"})
	assert.ErrorIs(t, err, identity.ErrNoSigningSecret)
}

func TestTokenService_IssuedTokenVerifies(t *testing.T) {
	const secret = "shared-signing-secret-for-tests"

	s := NewTokenService(secret, time.Hour)
	user := &identity.AuthenticatedUser{
		ID:    "f7c3bc1d-8088-4c6f-9f0e-2f1a4c5d6e7f",
		Email: "user@example.com",
		Name:  "User Example",
		Role:  identity.RoleAdmin,
	}

	token, err := s.Issue(user)
	require.NoError(t, err)

	// The verifier on the receiving side must accept the token and recover
	// the same identity.
	v, err := identity.NewJWTVerifier(secret)
	require.NoError(t, err)

	ident, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, ident.SubjectID)
	assert.Equal(t, user.Email, ident.Email)
	assert.Equal(t, user.Name, ident.Name)
	assert.Equal(t, user.Role, ident.Role)
}

func TestTokenService_RejectedByWrongSecret(t *testing.T) {
	s := NewTokenService("signing-secret-one", time.Hour)

	token, err := s.Issue(&identity.AuthenticatedUser{ID: "u1"})
	require.NoError(t, err)

	v, err := identity.NewJWTVerifier("signing-secret-two")
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestTokenService_TTL(t *testing.T) {
	assert.Equal(t, 30*time.Minute, NewTokenService("s", 30*time.Minute).TTL())
}
