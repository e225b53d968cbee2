package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neuralarc-ai/salak/internal/database/db"
)

// StartCollector runs until ctx is cancelled, periodically refreshing the
// gauge metrics from the database.
func StartCollector(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	collect(ctx, pool)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collect(ctx, pool)
		}
	}
}

func collect(ctx context.Context, pool *pgxpool.Pool) {
	stats := pool.Stat()
	DatabaseConnections.WithLabelValues("in_use").Set(float64(stats.AcquiredConns()))
	DatabaseConnections.WithLabelValues("idle").Set(float64(stats.IdleConns()))
	DatabaseConnections.WithLabelValues("max_open").Set(float64(stats.MaxConns()))

	queries := db.New(pool)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if count, err := queries.CountUsers(ctx); err == nil {
		UsersTotal.Set(float64(count))
	} else {
		slog.Debug("failed to count users for metrics", "error", err)
	}

	if count, err := queries.CountActiveApiKeys(ctx); err == nil {
		APIKeysActive.Set(float64(count))
	} else {
		slog.Debug("failed to count api keys for metrics", "error", err)
	}
}
