package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuralarc-ai/salak/internal/identity"
)

type fakeAuthenticator struct {
	user *identity.AuthenticatedUser
	err  error
}

func (f *fakeAuthenticator) Resolve(_ *http.Request) (*identity.AuthenticatedUser, error) {
	return f.user, f.err
}

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		require.NotNil(t, user)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, user.ID)
	})
}

func TestRequireAuth_Success(t *testing.T) {
	auth := &fakeAuthenticator{user: &identity.AuthenticatedUser{ID: "u1", Role: identity.RoleUser}}
	handler := RequireAuth(auth)(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/api-keys", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	auth := &fakeAuthenticator{err: identity.ErrUnauthenticated}
	handler := RequireAuth(auth)(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/api-keys", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestRequireAuth_ReconciliationFailure(t *testing.T) {
	auth := &fakeAuthenticator{err: fmt.Errorf("%w: lookup: connection refused", identity.ErrReconciliationFailed)}
	handler := RequireAuth(auth)(okHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/api-keys", nil))

	// A backend failure during reconciliation is still a 401 to the client,
	// indistinguishable from a bad credential.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		user       *identity.AuthenticatedUser
		wantStatus int
	}{
		{
			name:       "admin allowed",
			user:       &identity.AuthenticatedUser{ID: "a1", Role: identity.RoleAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "regular user forbidden",
			user:       &identity.AuthenticatedUser{ID: "u1", Role: identity.RoleUser},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthenticator{user: tt.user}
			handler := RequireAuth(auth)(RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/logs", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireAdmin_WithoutAuthContext(t *testing.T) {
	handler := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/logs", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
