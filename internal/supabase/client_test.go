package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAnonKey = "anon-key-for-tests"

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, testAnonKey, 5*time.Second), srv
}

func TestGetUser_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer valid-access-token", r.Header.Get("Authorization"))
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":    "7e6f0a51-1f5b-4c70-b3bb-8e6d7c3e3a1c",
			"email": "user@example.com",
			"user_metadata": map[string]any{
				"full_name": "User Example",
			},
		})
	})
	defer srv.Close()

	user, err := client.GetUser(context.Background(), "valid-access-token")
	require.NoError(t, err)
	assert.Equal(t, "7e6f0a51-1f5b-4c70-b3bb-8e6d7c3e3a1c", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, "User Example", user.UserMetadata["full_name"])
}

func TestGetUser_InvalidToken(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.GetUser(context.Background(), "bad-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
		srv.Close()
	}
}

func TestGetUser_ServerError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := client.GetUser(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestGetUser_MissingID(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"email": "user@example.com"})
	})
	defer srv.Close()

	_, err := client.GetUser(context.Background(), "token")
	assert.Error(t, err)
}

func TestSignInWithPassword_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "session-access-token",
			"refresh_token": "session-refresh-token",
			"expires_in":    3600,
			"user":          map[string]any{"id": "u1", "email": "user@example.com"},
		})
	})
	defer srv.Close()

	session, err := client.SignInWithPassword(context.Background(), "user@example.com", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, "session-access-token", session.AccessToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	assert.Equal(t, "u1", session.User.ID)
}

func TestSignInWithPassword_BadCredentials(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	})
	defer srv.Close()

	_, err := client.SignInWithPassword(context.Background(), "user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])
		data, _ := body["data"].(map[string]any)
		assert.Equal(t, "User Example", data["full_name"])

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-token",
			"user":         map[string]any{"id": "u1"},
		})
	})
	defer srv.Close()

	session, err := client.SignUp(context.Background(), "user@example.com", "Sup3rSecret",
		map[string]any{"full_name": "User Example"})
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", session.AccessToken)
}

func TestSignUp_ConfirmationRequired(t *testing.T) {
	// With email confirmation on, the signup endpoint returns the bare user
	// object and no session.
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "u1",
			"email": "user@example.com",
		})
	})
	defer srv.Close()

	session, err := client.SignUp(context.Background(), "user@example.com", "Sup3rSecret", nil)
	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, "user@example.com", session.User.Email)
}

func TestSignUp_UserExists(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnprocessableEntity} {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"code": status,
				"msg":  "User already registered",
			})
		})

		_, err := client.SignUp(context.Background(), "user@example.com", "Sup3rSecret", nil)
		assert.ErrorIs(t, err, ErrUserExists)
		srv.Close()
	}
}

func TestSignUp_ServerError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := client.SignUp(context.Background(), "user@example.com", "Sup3rSecret", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserExists)
}
