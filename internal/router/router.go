package router

import (
	"net/http"

	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/handler"
	"github.com/bristoevents/eventmail/internal/metrics"
	"github.com/bristoevents/eventmail/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.MetricsHandler())
	}

	// Submission routes (rate limited per client IP)
	mux.Handle("POST /api/book", mw.RateLimit("book")(http.HandlerFunc(h.Book)))
	mux.Handle("POST /api/contact", mw.RateLimit("contact")(http.HandlerFunc(h.Contact)))

	// Apply middleware stack
	var handler http.Handler = mux

	// CORS
	handler = mw.CORS(cfg.CORS.AllowedOrigins)(handler)

	// Security headers
	handler = mw.SecurityHeaders(handler)

	// Route metrics
	handler = mw.Metrics(handler)

	// Request logging
	handler = mw.Logger(handler)

	// Timing
	handler = mw.Timing(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
