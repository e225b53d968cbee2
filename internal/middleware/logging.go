// Package middleware provides HTTP middleware for Salak.
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/neuralarc-ai/salak/internal/logging"
)

// Logging assigns each request an id and logs the request on completion.
// An inbound X-Request-ID from an upstream proxy is kept so log lines can
// be correlated across services; otherwise a fresh id is minted. The id is
// placed in the context so downstream loggers tag their records with it.
func Logging(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", requestID)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := logging.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.Info("request_completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"size", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", requestID,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// Recovery converts panics into 500 responses and logs them with a stack
// trace under the request's id.
func Recovery(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered",
						"error", err,
						"path", r.URL.Path,
						"request_id", logging.GetRequestID(r.Context()),
						"stack", string(debug.Stack()),
					)
					jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
