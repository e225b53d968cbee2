// Package metrics declares the Prometheus instruments for Salak.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salak",
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salak",
			Name:      "http_request_duration_seconds",
			Help:      "Request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight gauges requests currently being served.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salak",
			Name:      "http_requests_in_flight",
			Help:      "Requests currently in flight",
		},
	)

	// AuthResolutions counts identity resolutions by outcome and the verifier
	// that accepted the token ("none" when all rejected it).
	AuthResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salak",
			Name:      "auth_resolutions_total",
			Help:      "Total number of request identity resolutions",
		},
		[]string{"outcome", "verifier"},
	)

	// VaultOperations counts seal/unseal operations.
	VaultOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salak",
			Name:      "vault_operations_total",
			Help:      "Total number of vault seal/unseal operations",
		},
		[]string{"operation", "result"},
	)

	// UsersTotal gauges the number of provisioned user profiles.
	UsersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salak",
			Name:      "users_total",
			Help:      "Provisioned user profiles",
		},
	)

	// APIKeysActive tracks the number of active stored API keys.
	APIKeysActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salak",
			Name:      "api_keys_active",
			Help:      "Stored API keys that are active",
		},
	)

	// DatabaseConnections exposes pgx pool counters by connection state.
	DatabaseConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "salak",
			Name:      "database_connections",
			Help:      "PostgreSQL pool connections by state",
		},
		[]string{"state"},
	)
)
