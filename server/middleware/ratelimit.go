package middleware

import (
	"net"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/resilience"
)

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	// Burst is the bucket size per client.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
	// MaxClients bounds the number of tracked clients; the least recently
	// seen are evicted.
	MaxClients int `yaml:"max_clients" mapstructure:"max_clients" validate:"gte=0"`
	// KeyFunc extracts the client key. Defaults to the remote IP.
	KeyFunc func(*http.Request) string `yaml:"-" mapstructure:"-"`
}

// RateLimit applies a token bucket per client key.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 10000
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = RemoteIPKey
	}
	// only fails for a non-positive size
	limiters, _ := lru.New[string, *resilience.RateLimiter](cfg.MaxClients)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.KeyFunc(r)
			rl, ok := limiters.Get(key)
			if !ok {
				rl = resilience.NewRateLimiter(resilience.RateLimiterConfig{
					Rate:  cfg.RequestsPerSecond,
					Burst: cfg.Burst,
				})
				// a concurrent first request may win; either limiter is fresh
				if prev, found, _ := limiters.PeekOrAdd(key, rl); found {
					rl = prev
				}
			}
			if !rl.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter(cfg.RequestsPerSecond)))
				writeError(w, r, apperrors.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RemoteIPKey keys clients by the host part of RemoteAddr.
func RemoteIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(rps float64) int {
	if rps >= 1 {
		return 1
	}
	return int(1/rps + 0.5)
}
