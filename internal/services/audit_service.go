package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neuralarc-ai/salak/internal/database/db"
	"github.com/neuralarc-ai/salak/internal/logging"
)

// Audit actions recorded in system_logs.
const (
	ActionUserRegistered = "user_registered"
	ActionUserLoggedIn   = "user_logged_in"
	ActionUserLoggedOut  = "user_logged_out"
	ActionKeyCreated     = "api_key_created"
	ActionKeyRevealed    = "api_key_revealed"
	ActionKeyRevoked     = "api_key_revoked"
)

// AuditService writes application events to the system_logs table.
type AuditService struct {
	queries *db.Queries
	pool    *pgxpool.Pool
}

// NewAuditService creates a new AuditService.
func NewAuditService(pool *pgxpool.Pool) *AuditService {
	return &AuditService{
		queries: db.New(pool),
		pool:    pool,
	}
}

// LogEntry is a system_logs row as exposed to the admin API.
type LogEntry struct {
	ID        uuid.UUID       `json:"id"`
	Level     string          `json:"level"`
	Action    string          `json:"action"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Log writes an audit entry.
func (s *AuditService) Log(ctx context.Context, action string, userID *uuid.UUID, details map[string]any) error {
	var payload []byte
	if details != nil {
		var err error
		payload, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	return s.queries.CreateSystemLog(ctx, db.CreateSystemLogParams{
		Level:   "info",
		Action:  action,
		UserID:  userID,
		Details: payload,
	})
}

// LogAsync records the entry on a background goroutine so audit writes never
// sit on the request path. Failures are logged and dropped. A nil receiver is
// a no-op so callers without auditing configured need no guard.
func (s *AuditService) LogAsync(ctx context.Context, action string, userID *uuid.UUID, details map[string]any) {
	if s == nil {
		return
	}
	log := logging.Logger(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.Log(ctx, action, userID, details); err != nil {
			log.Warn("audit_write_failed", "action", action, "error", err)
		}
	}()
}

// List returns audit entries, newest first.
func (s *AuditService) List(ctx context.Context, limit, offset int32) ([]*LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.queries.ListSystemLogs(ctx, db.ListSystemLogsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list system logs: %w", err)
	}

	entries := make([]*LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, &LogEntry{
			ID:        r.ID,
			Level:     r.Level,
			Action:    r.Action,
			UserID:    r.UserID,
			Details:   r.Details,
			CreatedAt: r.CreatedAt,
		})
	}
	return entries, nil
}

// Cleanup deletes entries older than the retention window.
func (s *AuditService) Cleanup(ctx context.Context, retention time.Duration) error {
	log := logging.Logger(ctx)

	cutoff := time.Now().Add(-retention)
	deleted, err := s.queries.DeleteOldSystemLogs(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete old system logs: %w", err)
	}

	if deleted > 0 {
		log.Info("audit_logs_cleaned", "deleted", deleted)
	}
	return nil
}

// StartCleanup runs Cleanup on a ticker until ctx is cancelled.
func (s *AuditService) StartCleanup(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Cleanup(ctx, retention); err != nil {
				logging.Logger(ctx).Error("audit_cleanup_failed", "error", err)
			}
		}
	}
}
