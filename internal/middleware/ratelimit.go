package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bristoevents/eventmail/internal/metrics"
)

const rateLimitMessage = "Too many requests. Please try again later."

// RateLimit limits submissions per route and client IP. Counters live in
// Redis when a counter store is configured, otherwise in process. route
// labels the rate-limited metric and namespaces the limiter key.
func (m *Middleware) RateLimit(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.cfg.RateLimit.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := m.clientIP(r)
			var allowed bool
			if m.counter != nil {
				allowed = m.allowShared(w, r, route, ip)
			} else {
				allowed = m.allowLocal(w, route, ip)
			}

			if !allowed {
				metrics.RateLimited.WithLabelValues(route).Inc()
				m.log.Warn().Str("route", route).Str("client_ip", ip).Msg("rate limit exceeded")
				writeJSONError(w, http.StatusTooManyRequests, "rate_limit_exceeded", rateLimitMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allowShared is a fixed-window counter in Redis. Redis errors fail open.
func (m *Middleware) allowShared(w http.ResponseWriter, r *http.Request, route, ip string) bool {
	ctx := r.Context()
	limit := m.cfg.RateLimit.Limit
	key := fmt.Sprintf("ratelimit:%s:%s", route, ip)

	count, err := m.counter.Incr(ctx, key)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to increment rate limit counter")
		return true
	}

	// Set expiry on first request
	if count == 1 {
		if err := m.counter.Expire(ctx, key, m.cfg.RateLimit.Window); err != nil {
			m.log.Error().Err(err).Msg("failed to set rate limit window")
		}
	}

	ttl, err := m.counter.TTL(ctx, key)
	if err != nil || ttl < 0 {
		ttl = m.cfg.RateLimit.Window
	}

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, limit-int(count))))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

	if int(count) > limit {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(ttl.Seconds()), 10))
		return false
	}
	return true
}

// allowLocal keeps one bucket per route and client so each route has its
// own budget, matching the Redis keys.
func (m *Middleware) allowLocal(w http.ResponseWriter, route, ip string) bool {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.cfg.RateLimit.Limit))
	if !m.limiters.allow(route + "|" + ip) {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(m.limiters.every.Seconds()), 10))
		return false
	}
	return true
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// ipLimiters is a token bucket per key (route and client IP). A full
// bucket holds limit tokens and refills one token every window/limit.
type ipLimiters struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	every     time.Duration
	burst     int
	maxAge    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiters(limit int, window time.Duration) *ipLimiters {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &ipLimiters{
		entries:   make(map[string]*limiterEntry),
		every:     window / time.Duration(limit),
		burst:     limit,
		maxAge:    2 * window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ipLimiters) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.maxAge {
		l.sweep(now)
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.entries[key] = e
	}
	e.lastAccess = now

	return e.limiter.AllowN(now, 1)
}

// sweep drops idle entries; callers hold l.mu
func (l *ipLimiters) sweep(now time.Time) {
	for key, e := range l.entries {
		if now.Sub(e.lastAccess) > l.maxAge {
			delete(l.entries, key)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiters) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
