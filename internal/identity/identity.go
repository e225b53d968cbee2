// Package identity resolves the caller of an inbound request to an
// application user.
//
// A request token is validated by an ordered list of verifier strategies
// (hosted-session introspection, then a self-issued JWT check). Whichever
// strategy succeeds yields a subject id, which is then reconciled against the
// profile store: the profile row is looked up by subject id and lazily
// created when genuinely absent. The resolver never matches profiles by
// email; emails change, subject ids do not.
package identity

import (
	"context"
	"errors"
	"strings"
)

// Roles. A flat two-value enum; there is no hierarchy.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AuthenticatedUser is the normalized identity of a caller. It always mirrors
// a persisted profile row; the resolver never fabricates one from provider
// metadata alone.
type AuthenticatedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func IsAdmin(u *AuthenticatedUser) bool {
	return u != nil && u.Role == RoleAdmin
}

// Identity is what a verifier extracts from a valid token: the provider's
// stable subject id plus whatever profile metadata the provider exposes.
// Email, Name and Role may be empty.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
	Role      string
}

// Verifier validates a bearer token and extracts an Identity from it.
// Verifiers are independent: a failure of one never prevents the next from
// being tried.
type Verifier interface {
	// Name identifies the strategy in logs and metrics.
	Name() string
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ProfileStore is the persistence surface the resolver needs. FindByID must
// return ErrProfileNotFound when the row is genuinely absent, as opposed to
// any other lookup failure. Insert must return ErrProfileExists on a
// uniqueness conflict so the resolver can treat a lost insert race as a
// signal to re-read.
type ProfileStore interface {
	FindByID(ctx context.Context, subjectID string) (*AuthenticatedUser, error)
	Insert(ctx context.Context, user *AuthenticatedUser) (*AuthenticatedUser, error)
}

var (
	// ErrUnauthenticated means no token was presented, or no verifier could
	// validate the one that was.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrReconciliationFailed means the token was valid but the authoritative
	// profile row could not be confirmed or created. This indicates a backend
	// problem, not a bad credential, and is logged accordingly.
	ErrReconciliationFailed = errors.New("profile reconciliation failed")

	// ErrProfileNotFound is returned by ProfileStore.FindByID when no row
	// exists for the subject id.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileExists is returned by ProfileStore.Insert on a uniqueness
	// conflict.
	ErrProfileExists = errors.New("profile already exists")
)

// deriveName picks a display name from provider metadata, falling back to the
// local part of the email and finally a generic placeholder.
func deriveName(ident *Identity) string {
	if name := strings.TrimSpace(ident.Name); name != "" {
		return name
	}
	if ident.Email != "" {
		if at := strings.IndexByte(ident.Email, '@'); at > 0 {
			return ident.Email[:at]
		}
	}
	return "User"
}

// deriveRole trusts a provider-supplied role hint when present, defaulting
// to the ordinary user role.
func deriveRole(ident *Identity) string {
	if ident.Role == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}
