// Package metrics defines Prometheus metrics for submissions, mail
// delivery and the HTTP surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Submission metrics
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventmail_submissions_total",
		Help: "Total number of submissions handled, by kind and outcome",
	}, []string{"kind", "outcome"})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventmail_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"provider"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventmail_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"provider"})
	MailSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventmail_mail_send_duration_seconds",
		Help:    "Duration of outbound mail sends",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider"})

	// Event publishing
	EventsPublishFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventmail_events_publish_failed_total",
		Help: "Total number of submission events that could not be published",
	})

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventmail_http_requests_total",
		Help: "Total number of HTTP requests, by route and status",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventmail_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventmail_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailSendDuration)
	prometheus.MustRegister(EventsPublishFailed)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(RateLimited)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
