package handlers

import (
	"net/http"
	"strconv"

	"github.com/neuralarc-ai/salak/internal/logging"
	"github.com/neuralarc-ai/salak/internal/services"
)

// AdminHandler handles admin-only endpoints.
type AdminHandler struct {
	auditService *services.AuditService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{auditService: auditService}
}

// Logs handles GET /api/admin/logs with limit and offset query parameters.
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := int32(100)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			limit = int32(n)
		}
	}
	offset := int32(0)
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil && n >= 0 {
			offset = int32(n)
		}
	}

	entries, err := h.auditService.List(r.Context(), limit, offset)
	if err != nil {
		logging.Logger(r.Context()).Error("admin_logs_list_failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list system logs")
		return
	}

	jsonResponse(w, http.StatusOK, entries)
}
