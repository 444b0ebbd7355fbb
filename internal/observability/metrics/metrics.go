// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the message pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartmailr",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, []string{"handler", "method", "code"})

	httpErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartmailr",
		Name:      "http_request_errors_total",
		Help:      "Total number of HTTP requests that resulted in a server error.",
	}, []string{"handler", "method"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smartmailr",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"handler", "method"})

	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartmailr",
		Name:      "messages_processed_total",
		Help:      "Total number of messages driven through the triage pipeline.",
	}, []string{"intent", "outcome"})

	messageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smartmailr",
		Name:      "message_processing_duration_seconds",
		Help:      "Wall time spent processing a single message.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"intent"})
)

// ObserveHTTPRequest records metrics about an HTTP request lifecycle.
func ObserveHTTPRequest(handler, method string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	if status >= 500 {
		httpErrors.WithLabelValues(handler, method).Inc()
	}
	httpDuration.WithLabelValues(handler, method).Observe(duration.Seconds())
}

// ObserveMessage records the outcome of one triage run. outcome is either
// "succeeded" or "failed"; intent may be empty when classification never ran.
func ObserveMessage(intent, outcome string, duration time.Duration) {
	if intent == "" {
		intent = "unknown"
	}
	messagesProcessed.WithLabelValues(intent, outcome).Inc()
	messageDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

// Handler exposes the metrics in Prometheus text exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
