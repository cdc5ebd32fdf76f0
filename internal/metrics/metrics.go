// Package metrics exposes Prometheus collectors for the relay service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	relayFetchesTotal          *prometheus.CounterVec
	relayFetchedBytesTotal     *prometheus.CounterVec
	relayFetchDurationSeconds  prometheus.Histogram
	relayExtractionsTotal      *prometheus.CounterVec
	relayNotificationsTotal    *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route"},
		)

		relayFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_fetches_total",
				Help: "Total number of source page fetches, labeled by fetcher and status code.",
			},
			[]string{"fetcher", "status"},
		)

		relayFetchedBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_fetched_bytes_total",
				Help: "Total number of bytes fetched from source pages, labeled by fetcher.",
			},
			[]string{"fetcher"},
		)

		relayFetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "relay_fetch_duration_seconds",
				Help:    "Histogram of source page fetch latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		relayExtractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_extractions_total",
				Help: "Total number of extraction attempts, labeled by outcome.",
			},
			[]string{"status"},
		)

		relayNotificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_notifications_total",
				Help: "Total number of outbound notifications, labeled by outcome.",
			},
			[]string{"status"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveFetch records one source page fetch. Labels never carry the fetched
// host: the URL comes from API callers. A zero status means no HTTP response
// was received; statuses outside 100-599 are folded into "invalid".
func ObserveFetch(fetcher string, status int, bytesFetched int, duration time.Duration) {
	Init()
	label := statusLabel(status)
	relayFetchesTotal.WithLabelValues(fetcher, label).Inc()
	if bytesFetched > 0 {
		relayFetchedBytesTotal.WithLabelValues(fetcher).Add(float64(bytesFetched))
	}
	relayFetchDurationSeconds.Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status == 0:
		return "network_error"
	case status < 100 || status > 599:
		return "invalid"
	default:
		return strconv.Itoa(status)
	}
}

// ObserveExtraction increments the extraction counter for the given outcome.
func ObserveExtraction(status string) {
	Init()
	relayExtractionsTotal.WithLabelValues(status).Inc()
}

// ObserveNotification increments the notification counter for the given outcome.
func ObserveNotification(status string) {
	Init()
	relayNotificationsTotal.WithLabelValues(status).Inc()
}
