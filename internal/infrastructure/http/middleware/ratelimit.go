package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/nutrismart/planner/pkg/errors"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address
type RateLimiter struct {
	limit       rate.Limit
	burst       int
	idleTimeout time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter allows requestsPerMin per client with the given burst.
// Buckets unused for idleTimeout are dropped by Run.
func NewRateLimiter(requestsPerMin, burst int, idleTimeout time.Duration, logger *zap.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	return &RateLimiter{
		limit:       rate.Limit(requestsPerMin) / 60,
		burst:       burst,
		idleTimeout: idleTimeout,
		logger:      logger.Named("rate-limiter"),
		visitors:    make(map[string]*visitor),
		now:         time.Now,
	}
}

// Allow reports whether the client identified by key may proceed
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	now := l.now()
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Cleanup forgets clients idle for longer than the idle timeout
func (l *RateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTimeout)
	removed := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

// Run cleans up idle clients until ctx is done
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.idleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Cleanup(); n > 0 {
				l.logger.Debug("Dropped idle rate limit buckets", zap.Int("count", n))
			}
		}
	}
}

// Middleware rejects requests over the limit with 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.Allow(key) {
			l.logger.Warn("Rate limit exceeded", zap.String("client", key), zap.String("path", r.URL.Path))
			retryAfter := 1
			if l.limit > 0 {
				retryAfter = int(math.Ceil(1 / float64(l.limit)))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, r, http.StatusTooManyRequests,
				apperrors.NewAppError(apperrors.CodeTooManyRequests, "Too many requests", ""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey relies on chi's RealIP having rewritten RemoteAddr
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
