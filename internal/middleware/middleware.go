package middleware

import (
	"context"
	"net/netip"
	"time"

	"github.com/bristoevents/eventmail/internal/cache"
	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/logger"
)

// Counter is a shared fixed-window counter store
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Middleware holds all HTTP middleware
type Middleware struct {
	counter        Counter
	limiters       *ipLimiters
	trustedProxies []netip.Prefix
	log            *logger.Logger
	cfg            *config.Config
}

// New creates a new Middleware instance. rdb may be nil, in which case
// rate limiting is done in process.
func New(rdb *cache.Redis, log *logger.Logger, cfg *config.Config) *Middleware {
	m := &Middleware{
		log:      log,
		cfg:      cfg,
		limiters: newIPLimiters(cfg.RateLimit.Limit, cfg.RateLimit.Window),
	}
	trusted, err := config.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring trusted proxies, forwarding headers will not be honoured")
	}
	m.trustedProxies = trusted
	if rdb != nil {
		m.counter = rdb
	}
	return m
}

// WithCounter replaces the rate-limit counter store
func (m *Middleware) WithCounter(c Counter) *Middleware {
	m.counter = c
	return m
}
