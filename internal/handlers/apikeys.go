package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neuralarc-ai/salak/internal/logging"
	"github.com/neuralarc-ai/salak/internal/middleware"
	"github.com/neuralarc-ai/salak/internal/services"
	"github.com/neuralarc-ai/salak/internal/validation"
	"github.com/neuralarc-ai/salak/internal/vault"
)

// APIKeyHandler handles the stored api-key endpoints.
type APIKeyHandler struct {
	keyService         *services.APIKeyService
	auditService       *services.AuditService
	maxRequestBodySize int64
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(keyService *services.APIKeyService, auditService *services.AuditService, maxRequestBodySize int64) *APIKeyHandler {
	return &APIKeyHandler{
		keyService:         keyService,
		auditService:       auditService,
		maxRequestBodySize: maxRequestBodySize,
	}
}

// List handles GET /api/api-keys. Responses carry metadata only, never key
// material.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Invalid user id")
		return
	}

	keys, err := h.keyService.List(r.Context(), userID)
	if err != nil {
		logging.Logger(r.Context()).Error("api_key_list_failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list api keys")
		return
	}

	jsonResponse(w, http.StatusOK, keys)
}

// Create handles POST /api/api-keys.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.Logger(r.Context())

	user := middleware.GetUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Invalid user id")
		return
	}

	var req struct {
		Name   string `json:"name"`
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxRequestBodySize)).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}

	if err := validation.KeyName(req.Name); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if err := validation.KeySecret(req.Secret); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	key, err := h.keyService.Create(r.Context(), userID, req.Name, req.Secret)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrKeyNameExists):
			jsonError(w, http.StatusConflict, "KEY_NAME_EXISTS", "An api key with this name already exists")
		case errors.Is(err, vault.ErrNotConfigured):
			log.Error("api_key_create_failed", "error", err)
			jsonError(w, http.StatusInternalServerError, "VAULT_NOT_CONFIGURED", "Key storage is not configured")
		default:
			log.Error("api_key_create_failed", "error", err)
			jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store api key")
		}
		return
	}

	h.auditService.LogAsync(r.Context(), services.ActionKeyCreated, &userID, map[string]any{"key_id": key.ID})
	jsonResponse(w, http.StatusCreated, key)
}

// Reveal handles POST /api/api-keys/{id}/reveal.
func (h *APIKeyHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	log := logging.Logger(r.Context())

	user := middleware.GetUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Invalid user id")
		return
	}

	keyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid key id")
		return
	}

	secret, err := h.keyService.Reveal(r.Context(), userID, keyID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrKeyNotFound):
			jsonError(w, http.StatusNotFound, "NOT_FOUND", "API key not found")
		case errors.Is(err, vault.ErrDecryptionFailed), errors.Is(err, vault.ErrInvalidInput):
			// Stored material that no longer decrypts means tampering or a
			// rotated master secret; never return partial output.
			log.Error("api_key_reveal_failed", "key_id", keyID, "error", err)
			jsonError(w, http.StatusInternalServerError, "DECRYPTION_FAILED", "Unable to decrypt api key")
		default:
			log.Error("api_key_reveal_failed", "key_id", keyID, "error", err)
			jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reveal api key")
		}
		return
	}

	h.auditService.LogAsync(r.Context(), services.ActionKeyRevealed, &userID, map[string]any{"key_id": keyID})
	jsonResponse(w, http.StatusOK, map[string]string{"secret": secret})
}

// Revoke handles DELETE /api/api-keys/{id}.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	log := logging.Logger(r.Context())

	user := middleware.GetUser(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Invalid user id")
		return
	}

	keyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid key id")
		return
	}

	if err := h.keyService.Revoke(r.Context(), userID, keyID); err != nil {
		switch {
		case errors.Is(err, services.ErrKeyNotFound):
			jsonError(w, http.StatusNotFound, "NOT_FOUND", "API key not found")
		case errors.Is(err, services.ErrKeyAlreadyRevoked):
			jsonError(w, http.StatusBadRequest, "ALREADY_REVOKED", "API key is already revoked")
		default:
			log.Error("api_key_revoke_failed", "key_id", keyID, "error", err)
			jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke api key")
		}
		return
	}

	h.auditService.LogAsync(r.Context(), services.ActionKeyRevoked, &userID, map[string]any{"key_id": keyID})
	jsonResponse(w, http.StatusOK, map[string]any{"message": "API key revoked"})
}
