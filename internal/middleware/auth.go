package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/neuralarc-ai/salak/internal/identity"
	"github.com/neuralarc-ai/salak/internal/logging"
)

// apiError is the standardized API error response shape.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// jsonError writes a standardized JSON error response.
func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiError{}
	resp.Error.Code = code
	resp.Error.Message = message
	json.NewEncoder(w).Encode(resp)
}

// UserContextKey is the context key for the authenticated user.
type UserContextKey struct{}

// Authenticator resolves a request to a user. *identity.Resolver satisfies
// it; tests substitute fakes.
type Authenticator interface {
	Resolve(r *http.Request) (*identity.AuthenticatedUser, error)
}

// RequireAuth returns middleware that rejects requests whose identity cannot
// be resolved. Reconciliation failures surface as 401 like any other
// resolution failure, but are logged at error level since they signal a
// backend-health problem rather than a bad credential.
func RequireAuth(auth Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Resolve(r)
			if err != nil {
				if errors.Is(err, identity.ErrReconciliationFailed) {
					logging.Logger(r.Context()).Error("profile_reconciliation_failed",
						"path", r.URL.Path,
						"error", err,
					)
				}
				jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that restricts a route to admin users. It
// must run after RequireAuth.
func RequireAdmin() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			if !identity.IsAdmin(user) {
				jsonError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the authenticated user from the context.
func GetUser(ctx context.Context) *identity.AuthenticatedUser {
	user, _ := ctx.Value(UserContextKey{}).(*identity.AuthenticatedUser)
	return user
}
