package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const readinessProbeTimeout = 5 * time.Second

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	started time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		redis:   redis,
		started: time.Now(),
	}
}

// probeResult records the outcome of a single dependency check.
type probeResult struct {
	OK      bool   `json:"ok"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

// Liveness reports that the process is up. It touches no dependencies, so a
// database outage never restarts the pod.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness pings PostgreSQL and Redis and reports per-dependency results.
// Any failing dependency makes the whole probe return 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessProbeTimeout)
	defer cancel()

	checks := map[string]probeResult{
		"postgres": h.probe(ctx, "postgres", func(ctx context.Context) error {
			return h.pool.Ping(ctx)
		}),
		"redis": h.probe(ctx, "redis", func(ctx context.Context) error {
			return h.redis.Ping(ctx).Err()
		}),
	}

	status, code := "ready", http.StatusOK
	for _, c := range checks {
		if !c.OK {
			status, code = "unavailable", http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}

func (h *HealthHandler) probe(ctx context.Context, name string, ping func(context.Context) error) probeResult {
	start := time.Now()
	err := ping(ctx)
	res := probeResult{
		OK:      err == nil,
		Latency: time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		slog.Error("readiness check failed", "dependency", name, "error", err)
		res.Error = err.Error()
	}
	return res
}
