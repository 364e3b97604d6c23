// Package metrics holds the Prometheus collectors for the relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	messages           *prometheus.CounterVec
	completionFailures prometheus.Counter
	completionDuration prometheus.Histogram
	activeConnections  prometheus.Gauge
	rejectedUpgrades   prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Each Metrics needs its own registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_total",
				Help: "Inbound chat messages by quota decision",
			},
			[]string{"result"},
		),
		completionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_completion_failures_total",
			Help: "Completion API calls that ended in an error",
		}),
		completionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_completion_duration_seconds",
			Help:    "Duration of completion API calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),
		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chat_active_connections",
			Help: "Currently open chat WebSocket connections",
		}),
		rejectedUpgrades: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_rejected_upgrades_total",
			Help: "WebSocket upgrades refused by the connect rate limiter",
		}),
		gatherer: reg,
	}
}

// NewDefault is New on a fresh registry that also carries the Go and process collectors.
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

func (m *Metrics) RecordMessage(admitted bool) {
	result := "admitted"
	if !admitted {
		result = "rejected"
	}
	m.messages.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordCompletion(seconds float64, failed bool) {
	m.completionDuration.Observe(seconds)
	if failed {
		m.completionFailures.Inc()
	}
}

func (m *Metrics) ConnectionOpened() { m.activeConnections.Inc() }

func (m *Metrics) ConnectionClosed() { m.activeConnections.Dec() }

func (m *Metrics) RecordRejectedUpgrade() { m.rejectedUpgrades.Inc() }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
