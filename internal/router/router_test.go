package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/email"
	"github.com/bristoevents/eventmail/internal/events"
	"github.com/bristoevents/eventmail/internal/handler"
	"github.com/bristoevents/eventmail/internal/logger"
	"github.com/bristoevents/eventmail/internal/middleware"
	"github.com/bristoevents/eventmail/internal/service"
)

func newTestServer(t *testing.T, sender email.Sender, limit int) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Server:    config.ServerConfig{MaxBodyBytes: 1 << 20},
		RateLimit: config.RateLimitConfig{Enabled: true, Limit: limit, Window: time.Minute},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"https://www.bristoevents.co.ke"}},
		Business: config.BusinessConfig{
			Email: "info@bristoevents.co.ke",
			Name:  "Bristo Event Caterers",
		},
		Mail:    config.MailConfig{Provider: config.ProviderSMTP},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	log := logger.Nop()
	svc := service.NewSubmissionService(sender, events.Nop{}, cfg.Business, log)
	h := handler.New(nil, log, cfg, svc)
	mw := middleware.New(nil, log, cfg)

	srv := httptest.NewServer(New(h, mw, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_BookingEndToEnd(t *testing.T) {
	rec := &email.RecordingSender{}
	srv := newTestServer(t, rec, 10)

	resp, err := http.Post(srv.URL+"/api/book", "application/json",
		strings.NewReader(`{"name":"Jane","email":"jane@example.com","eventType":"wedding"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, []string{"info@bristoevents.co.ke", "jane@example.com"}, rec.Recipients())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &email.RecordingSender{}, 10)

	resp, err := http.Get(srv.URL + "/api/book")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRouter_RateLimitsSubmissions(t *testing.T) {
	rec := &email.RecordingSender{}
	srv := newTestServer(t, rec, 1)

	post := func() int {
		resp, err := http.Post(srv.URL+"/api/contact", "application/json", strings.NewReader(`{"name":"Sam"}`))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
	assert.Len(t, rec.Messages(), 1)

	// health is never rate limited
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, &email.RecordingSender{}, 10)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/book", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://www.bristoevents.co.ke")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://www.bristoevents.co.ke", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t, &email.RecordingSender{}, 10)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "eventmail_http_requests_total")
}
