// Package supabase is a minimal REST client for the hosted identity
// provider's auth API (GoTrue). Only the endpoints the application needs are
// implemented: token introspection, password sign-in and sign-up.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidToken is returned when the provider rejects a token.
var ErrInvalidToken = errors.New("supabase: invalid or expired token")

// ErrInvalidCredentials is returned when a password grant is rejected.
var ErrInvalidCredentials = errors.New("supabase: invalid credentials")

// ErrUserExists is returned when signup hits an already-registered email.
var ErrUserExists = errors.New("supabase: user already registered")

// AuthUser is the provider's view of an authenticated principal.
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Session is the provider-issued session returned by a password grant.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

// Client talks to the provider's auth endpoints. Token validation always uses
// the anon key; the service role key bypasses auth checks and would validate
// anything.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// New creates a Client for the given project URL and anon key.
func New(baseURL, anonKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetUser introspects an access token and returns the principal it belongs
// to. Returns ErrInvalidToken when the provider rejects the token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: user introspection: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("supabase: user introspection returned status %d", resp.StatusCode)
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("supabase: decoding user: %w", err)
	}
	if user.ID == "" {
		return nil, errors.New("supabase: user response carries no id")
	}

	return &user, nil
}

// SignInWithPassword performs a password grant and returns the provider
// session. Returns ErrInvalidCredentials on a 400 from the token endpoint.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: password grant: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase: password grant returned status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("supabase: decoding session: %w", err)
	}
	if session.AccessToken == "" {
		return nil, errors.New("supabase: password grant returned no access token")
	}

	return &session, nil
}

// SignUp registers a new principal with the provider. The provider may
// return a session immediately or require email confirmation first, in which
// case AccessToken is empty. Returns ErrUserExists when the email is already
// registered.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/signup", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: signup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("supabase: reading signup response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity) &&
			strings.Contains(strings.ToLower(string(raw)), "already") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("supabase: signup returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("supabase: decoding signup response: %w", err)
	}
	// When email confirmation is required the response body is the bare user
	// object instead of a session.
	if session.User.ID == "" {
		if err := json.Unmarshal(raw, &session.User); err != nil {
			return nil, fmt.Errorf("supabase: decoding signup user: %w", err)
		}
	}
	if session.User.ID == "" {
		return nil, errors.New("supabase: signup response carries no user id")
	}

	return &session, nil
}
