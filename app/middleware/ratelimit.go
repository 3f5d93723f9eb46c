package appMiddleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client address. Session cookies are
// free to obtain, so they do not identify a client here. Idle buckets expire.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	rps      rate.Limit
	burst    int
	logger   *slog.Logger
}

// NewRateLimiter allows rps requests per second (fractional values allowed)
// with bursts of up to burst requests per client.
func NewRateLimiter(rps float64, burst int, idle time.Duration, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: cache.New(idle, idle*2),
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.limiters.Set(key, lim, cache.DefaultExpiration)
		return lim
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	l.limiters.Set(key, lim, cache.DefaultExpiration)
	return lim
}

// Allow spends one token of the client behind r.
func (l *RateLimiter) Allow(r *http.Request) bool {
	key := clientKey(r)
	if l.limiter(key).Allow() {
		return true
	}
	l.logger.WarnContext(r.Context(), "Rate limit exceeded", slog.String("client", key), slog.String("path", r.URL.Path))
	return false
}

// Limit answers 429 once the client has spent its bucket.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r) {
			retry := 1
			if l.rps > 0 {
				retry = max(1, int(1/float64(l.rps)))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			http.Error(w, "Too many requests, please slow down.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the remote host. RemoteAddr has already been rewritten by the
// RealIP middleware when the service runs behind a proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
