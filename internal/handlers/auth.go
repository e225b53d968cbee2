package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neuralarc-ai/salak/internal/identity"
	"github.com/neuralarc-ai/salak/internal/logging"
	"github.com/neuralarc-ai/salak/internal/middleware"
	"github.com/neuralarc-ai/salak/internal/services"
	"github.com/neuralarc-ai/salak/internal/supabase"
	"github.com/neuralarc-ai/salak/internal/validation"
)

// requestResolver is the slice of the identity resolver the login flow
// needs; tests substitute fakes.
type requestResolver interface {
	Resolve(r *http.Request) (*identity.AuthenticatedUser, error)
}

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	userService        *services.UserService
	tokenService       *services.TokenService
	auditService       *services.AuditService
	supabase           *supabase.Client
	resolver           requestResolver
	isProduction       bool
	maxRequestBodySize int64
}

// NewAuthHandler creates a new AuthHandler. supabaseClient may be nil when
// the hosted provider is not configured.
func NewAuthHandler(
	userService *services.UserService,
	tokenService *services.TokenService,
	auditService *services.AuditService,
	supabaseClient *supabase.Client,
	isProduction bool,
	maxRequestBodySize int64,
) *AuthHandler {
	return &AuthHandler{
		userService:        userService,
		tokenService:       tokenService,
		auditService:       auditService,
		supabase:           supabaseClient,
		isProduction:       isProduction,
		maxRequestBodySize: maxRequestBodySize,
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     identity.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	for _, name := range []string{identity.AccessTokenCookie, identity.LegacyTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.isProduction,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Register handles POST /api/auth/register. Self-service registration always
// creates ordinary users; admin accounts are provisioned from the CLI.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logging.Logger(r.Context())

	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxRequestBodySize)).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}

	if err := validation.Email(req.Email); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if err := validation.Name(req.Name); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if err := validation.Password(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	if h.supabase != nil {
		h.registerHosted(w, r, req.Email, req.Name, req.Password)
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			jsonError(w, http.StatusConflict, "EMAIL_EXISTS", "An account with this email already exists")
			return
		}
		log.Error("registration_failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account")
		return
	}

	if userID, err := uuid.Parse(user.ID); err == nil {
		h.auditService.LogAsync(r.Context(), services.ActionUserRegistered, &userID, nil)
	}

	jsonResponse(w, http.StatusCreated, user)
}

// registerHosted creates the account at the hosted provider. The local
// profile row is not written here; it is reconciled from the provider
// identity on the first authenticated request.
func (h *AuthHandler) registerHosted(w http.ResponseWriter, r *http.Request, email, name, password string) {
	log := logging.Logger(r.Context())

	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	session, err := h.supabase.SignUp(r.Context(), email, password, map[string]any{
		"full_name": name,
		"name":      name,
		"role":      identity.RoleUser,
	})
	if err != nil {
		if errors.Is(err, supabase.ErrUserExists) {
			jsonError(w, http.StatusConflict, "EMAIL_EXISTS", "An account with this email already exists")
			return
		}
		log.Error("hosted_registration_failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account")
		return
	}

	user := &identity.AuthenticatedUser{
		ID:    session.User.ID,
		Email: session.User.Email,
		Name:  name,
		Role:  identity.RoleUser,
	}
	if userID, err := uuid.Parse(user.ID); err == nil {
		h.auditService.LogAsync(r.Context(), services.ActionUserRegistered, &userID, map[string]any{
			"provider": "supabase",
		})
	}

	log.Info("user_registered", "user_id", user.ID, "provider", "supabase")
	jsonResponse(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login. The hosted provider is tried first;
// accounts that only exist locally fall back to the Argon2id password check
// and a self-issued token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logging.Logger(r.Context())

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxRequestBodySize)).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Email and password are required")
		return
	}

	if h.supabase != nil {
		session, err := h.supabase.SignInWithPassword(r.Context(), req.Email, req.Password)
		if err == nil {
			h.finishLogin(w, r, session.AccessToken, time.Duration(session.ExpiresIn)*time.Second, "supabase")
			return
		}
		if !errors.Is(err, supabase.ErrInvalidCredentials) {
			log.Warn("hosted_login_unavailable", "error", err)
		}
	}

	if !h.tokenService.Enabled() {
		jsonError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	user, err := h.userService.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			jsonError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		log.Error("login_failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	token, err := h.tokenService.Issue(user)
	if err != nil {
		log.Error("token_issue_failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	h.finishLogin(w, r, token, h.tokenService.TTL(), "local")
}

// finishLogin sets the session cookie and responds with the resolved user.
// The token itself is also returned for clients that hold it in memory.
func (h *AuthHandler) finishLogin(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration, method string) {
	log := logging.Logger(r.Context())

	// Route the fresh token through the resolver so login and subsequent
	// requests agree on the profile row.
	req := r.Clone(r.Context())
	req.Header.Set("Authorization", "Bearer "+token)

	user, err := h.resolveWith(req)
	if err != nil {
		log.Error("login_reconciliation_failed", "method", method, "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unable to load user profile")
		return
	}

	h.setSessionCookie(w, token, ttl)

	if userID, err := uuid.Parse(user.ID); err == nil {
		h.auditService.LogAsync(r.Context(), services.ActionUserLoggedIn, &userID, map[string]any{"method": method})
	}
	log.Info("user_logged_in", "user_id", user.ID, "method", method)

	jsonResponse(w, http.StatusOK, map[string]any{
		"user":         user,
		"access_token": token,
	})
}

var errNoResolver = errors.New("auth resolver not configured")

// SetResolver wires the identity resolver used to reconcile fresh logins.
// Injected after construction since the router builds the resolver and the
// handlers together.
func (h *AuthHandler) SetResolver(r requestResolver) { h.resolver = r }

func (h *AuthHandler) resolveWith(req *http.Request) (*identity.AuthenticatedUser, error) {
	if h.resolver == nil {
		return nil, errNoResolver
	}
	return h.resolver.Resolve(req)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/auth/me. Only the display name is mutable;
// email and role changes go through the provider or the CLI.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxRequestBodySize)).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}
	if err := validation.Name(req.Name); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, strings.TrimSpace(req.Name))
	if err != nil {
		logging.Logger(r.Context()).Error("profile_update_failed", "user_id", user.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile")
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

// Logout handles POST /api/auth/logout. Sessions are stateless; logout just
// clears the cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r.Context()); user != nil {
		if userID, err := uuid.Parse(user.ID); err == nil {
			h.auditService.LogAsync(r.Context(), services.ActionUserLoggedOut, &userID, nil)
		}
	}

	h.clearSessionCookie(w)
	jsonResponse(w, http.StatusOK, map[string]any{"message": "Logged out"})
}
