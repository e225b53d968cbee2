package identity

import (
	"net/http"
	"strings"
)

// MinTokenLength is the shortest token worth validating. Anything shorter is
// rejected before any network call is made.
const MinTokenLength = 20

// Cookie names accepted as token carriers. accessToken is the current name;
// token is a legacy alias kept for older clients embedding the app in an
// iframe, where the Authorization header cannot be set.
const (
	AccessTokenCookie = "accessToken"
	LegacyTokenCookie = "token"
)

// TokenFromRequest extracts the bearer token from a request. Precedence:
// Authorization header, then the accessToken cookie, then the legacy token
// cookie. Returns empty string when none is present.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if cookie, err := r.Cookie(LegacyTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
