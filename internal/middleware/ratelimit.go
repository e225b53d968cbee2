package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the counter for the current window and returns
// the count together with the window's remaining TTL in milliseconds, so the
// reset header reflects the actual window rather than an estimate.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call("INCR", KEYS[1])
	if count == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	local ttl = redis.call("PTTL", KEYS[1])
	return {count, ttl}
`)

// RateLimiter meters requests per key over a fixed window in Redis.
type RateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func NewRateLimiter(client *redis.Client, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client:   client,
		requests: requests,
		window:   window,
	}
}

// limitResult describes the outcome of one metering attempt.
type limitResult struct {
	allowed   bool
	remaining int
	resetAt   time.Time
}

// allow records one request against key and reports whether it fits in the
// current window.
func (rl *RateLimiter) allow(ctx context.Context, key string) (limitResult, error) {
	vals, err := fixedWindowScript.Run(ctx, rl.client,
		[]string{"ratelimit:" + key}, rl.window.Milliseconds()).Int64Slice()
	if err != nil {
		return limitResult{}, err
	}

	count, ttl := int(vals[0]), vals[1]
	if ttl < 0 {
		ttl = rl.window.Milliseconds()
	}

	res := limitResult{
		allowed: count <= rl.requests,
		resetAt: time.Now().Add(time.Duration(ttl) * time.Millisecond),
	}
	if res.remaining = rl.requests - count; res.remaining < 0 {
		res.remaining = 0
	}
	return res, nil
}

// RateLimit meters requests by client IP, or by user id once a request is
// authenticated. When Redis is unreachable requests are rejected with 503
// rather than let through unmetered.
func RateLimit(limiter *RateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if user := GetUser(r.Context()); user != nil {
				key = "user:" + user.ID
			}

			res, err := limiter.allow(r.Context(), key)
			if err != nil {
				slog.Error("rate limiter unavailable", "key", key, "error", err)
				jsonError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.resetAt.Unix(), 10))

			if !res.allowed {
				retryAfter := int(time.Until(res.resetAt).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				jsonError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
