// Package handlers provides the HTTP handlers for Salak.
package handlers

import (
	"encoding/json"
	"net/http"
)

// Response helpers

type apiResponse struct {
	Data any `json:"data,omitempty"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Data: data})
}

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiError{}
	resp.Error.Code = code
	resp.Error.Message = message
	json.NewEncoder(w).Encode(resp)
}

// NotFoundHandler handles 404s with the standard error envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	jsonError(w, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found")
}

// MethodNotAllowedHandler handles 405s.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	jsonError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The requested method is not allowed for this resource")
}
