package security

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures per-client limits
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int
	Burst          int
	// Resolver identifies the client; nil uses the direct peer address
	Resolver *IPResolver
}

// RateLimiter applies a token bucket per client IP
type RateLimiter struct {
	config   RateLimitConfig
	visitors map[string]*visitor
	mu       sync.Mutex
	now      func() time.Time
	logger   *zap.Logger
}

// visitor tracks the limiter and last seen time of one client
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &RateLimiter{
		config:   cfg,
		visitors: make(map[string]*visitor),
		now:      time.Now,
		logger:   logger,
	}
}

// Allow checks if a request from the given client IP is allowed
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.config.Enabled || r.config.RequestsPerMin <= 0 {
		return true
	}

	now := r.now()
	return r.getVisitor(clientIP, now).AllowN(now, 1)
}

// getVisitor gets or creates the limiter for a client IP
func (r *RateLimiter) getVisitor(clientIP string, now time.Time) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.visitors[clientIP]
	if !exists {
		every := rate.Every(time.Minute / time.Duration(r.config.RequestsPerMin))
		v = &visitor{limiter: rate.NewLimiter(every, r.config.Burst)}
		r.visitors[clientIP] = v
	}
	v.lastSeen = now
	return v.limiter
}

// CleanupOldBuckets removes clients not seen within maxIdle
func (r *RateLimiter) CleanupOldBuckets(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for ip, v := range r.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(r.visitors, ip)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine removes idle clients periodically until ctx is done
func (r *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.CleanupOldBuckets(time.Hour); n > 0 {
					r.logger.Debug("Removed idle rate limit buckets", zap.Int("count", n))
				}
			}
		}
	}()
}

// Middleware rejects requests over the limit with 429
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		clientIP := r.config.Resolver.ClientIP(req)
		if !r.Allow(clientIP) {
			r.logger.Warn("Rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("path", req.URL.Path),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests, please try again later"}`))
			return
		}
		next.ServeHTTP(w, req)
	})
}
