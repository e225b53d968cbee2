package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/neuralarc-ai/salak/internal/identity"
	"github.com/neuralarc-ai/salak/internal/middleware"
)

func withUser(req *http.Request, user *identity.AuthenticatedUser) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserContextKey{}, user)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var testUser = &identity.AuthenticatedUser{
	ID:    "2ad0e980-8b14-44bb-a858-6a1c8ee00d88",
	Email: "user@example.com",
	Name:  "User",
	Role:  identity.RoleUser,
}

func TestAPIKeyHandler_List_Unauthorized(t *testing.T) {
	handler := NewAPIKeyHandler(nil, nil, 1024*1024)

	req := httptest.NewRequest(http.MethodGet, "/api/api-keys", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("List() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAPIKeyHandler_Create_Unauthorized(t *testing.T) {
	handler := NewAPIKeyHandler(nil, nil, 1024*1024)

	req := httptest.NewRequest(http.MethodPost, "/api/api-keys", strings.NewReader("{}"))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Create() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAPIKeyHandler_Create_Validation(t *testing.T) {
	handler := NewAPIKeyHandler(nil, nil, 1024*1024)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "invalid json",
			body: "not json",
		},
		{
			name: "name too short",
			body: `{"name":"ab","secret":"` + strings.Repeat("k", 40) + `"}`,
		},
		{
			name: "secret too short",
			body: `{"name":"openai-prod","secret":"short"}`,
		},
		{
			name: "missing fields",
			body: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/api-keys", bytes.NewBufferString(tt.body))
			req = withUser(req, testUser)
			w := httptest.NewRecorder()

			handler.Create(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Create() status = %d, want %d", w.Code, http.StatusBadRequest)
			}

			var resp apiError
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Error.Code != "INVALID_INPUT" {
				t.Errorf("Create() error code = %q, want INVALID_INPUT", resp.Error.Code)
			}
		})
	}
}

func TestAPIKeyHandler_Reveal_InvalidUUID(t *testing.T) {
	handler := NewAPIKeyHandler(nil, nil, 1024*1024)

	req := httptest.NewRequest(http.MethodPost, "/api/api-keys/not-a-uuid/reveal", nil)
	req = withUser(req, testUser)
	req = withURLParam(req, "id", "not-a-uuid")
	w := httptest.NewRecorder()

	handler.Reveal(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Reveal() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAPIKeyHandler_Revoke_InvalidUUID(t *testing.T) {
	handler := NewAPIKeyHandler(nil, nil, 1024*1024)

	req := httptest.NewRequest(http.MethodDelete, "/api/api-keys/42", nil)
	req = withUser(req, testUser)
	req = withURLParam(req, "id", "42")
	w := httptest.NewRecorder()

	handler.Revoke(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Revoke() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	jsonResponse(w, http.StatusCreated, map[string]string{"hello": "world"})

	if w.Code != http.StatusCreated {
		t.Errorf("jsonResponse() status = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("jsonResponse() Content-Type = %q, want application/json", ct)
	}

	var resp struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data["hello"] != "world" {
		t.Errorf("jsonResponse() data = %v", resp.Data)
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	jsonError(w, http.StatusTeapot, "TEAPOT", "I'm a teapot")

	if w.Code != http.StatusTeapot {
		t.Errorf("jsonError() status = %d, want %d", w.Code, http.StatusTeapot)
	}

	var resp apiError
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error.Code != "TEAPOT" || resp.Error.Message != "I'm a teapot" {
		t.Errorf("jsonError() = %+v", resp.Error)
	}
}
