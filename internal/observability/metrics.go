package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics tracks the inbound request surface: request counts, latency, and
// translation timing. Domain counters (commands, actions) live with the board
// manager; this covers the transport.
type HTTPMetrics struct {
	// RequestsTotal counts requests by method, route, and status code.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures handler latency in seconds.
	RequestDuration *prometheus.HistogramVec

	// TranslateDuration measures the upstream LLM round trip per provider.
	TranslateDuration *prometheus.HistogramVec

	// InFlight gauges concurrently served requests.
	InFlight prometheus.Gauge
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *HTTPMetrics
)

// NewHTTPMetrics returns the process-wide HTTP metrics singleton. promauto
// registers with the default registry, so the collectors are built once.
func NewHTTPMetrics() *HTTPMetrics {
	httpMetricsOnce.Do(func() {
		httpMetrics = &HTTPMetrics{
			RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "easel_http_requests_total",
				Help: "HTTP requests served, by method, route, and status",
			}, []string{"method", "route", "status"}),
			RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "easel_http_request_duration_seconds",
				Help:    "HTTP handler latency in seconds",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			}, []string{"method", "route"}),
			TranslateDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "easel_translate_duration_seconds",
				Help:    "Upstream translation latency in seconds, by provider",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			}, []string{"provider"}),
			InFlight: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "easel_http_requests_in_flight",
				Help: "Requests currently being served",
			}),
		}
	})
	return httpMetrics
}

// RecordRequest records one completed request. Nil-safe.
func (m *HTTPMetrics) RecordRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordTranslation records one upstream translation round trip. Nil-safe.
func (m *HTTPMetrics) RecordTranslation(provider string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TranslateDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RequestStarted marks a request in flight; pair with RequestFinished.
func (m *HTTPMetrics) RequestStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

// RequestFinished marks a request done.
func (m *HTTPMetrics) RequestFinished() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}
