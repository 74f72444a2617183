package board

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks command translation and execution. All record methods are
// nil-safe so callers never need to guard.
type Metrics struct {
	CommandsTotal      *prometheus.CounterVec
	ActionsTotal       *prometheus.CounterVec
	StreamSubscribers  prometheus.Gauge
	ShapesSkippedTotal prometheus.Counter
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics returns the process-wide metrics singleton. promauto registers
// with the default registry, so this must only build the collectors once.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "easel_commands_total",
				Help: "Commands translated, by provider and outcome",
			}, []string{"provider", "status"}),
			ActionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "easel_actions_applied_total",
				Help: "Actions applied to boards, by action type",
			}, []string{"type"}),
			StreamSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "easel_stream_subscribers",
				Help: "Currently connected board stream subscribers",
			}),
			ShapesSkippedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "easel_actions_skipped_total",
				Help: "Actions skipped for referencing unknown shapes",
			}),
		}
	})
	return metricsInstance
}

func (m *Metrics) RecordCommand(provider, status string) {
	if m == nil || m.CommandsTotal == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) RecordAction(actionType string) {
	if m == nil || m.ActionsTotal == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(actionType).Inc()
}

func (m *Metrics) RecordSkipped(n int) {
	if m == nil || m.ShapesSkippedTotal == nil || n <= 0 {
		return
	}
	m.ShapesSkippedTotal.Add(float64(n))
}

func (m *Metrics) SubscriberConnected() {
	if m == nil || m.StreamSubscribers == nil {
		return
	}
	m.StreamSubscribers.Inc()
}

func (m *Metrics) SubscriberDisconnected() {
	if m == nil || m.StreamSubscribers == nil {
		return
	}
	m.StreamSubscribers.Dec()
}
