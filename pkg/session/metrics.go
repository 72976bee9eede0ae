package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the session metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "queryparams").
	Namespace string

	// Subsystem is the metrics subsystem (default: "session").
	Subsystem string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the session metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// DefaultNamespace is the default metrics namespace.
const DefaultNamespace = "queryparams"

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: DefaultNamespace,
		Subsystem: "session",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors shared by all sessions of a server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enqueued       prometheus.Counter
	rejected       prometheus.Counter
	queueDepth     prometheus.Gauge
	activeSessions prometheus.Gauge
}

// NewMetrics registers the session collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		enqueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "notifications_enqueued_total",
			Help:      "Total number of page info notifications enqueued",
		}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "notifications_rejected_total",
			Help:      "Total number of notifications rejected by closed sessions",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "queue_depth",
			Help:      "Notifications waiting to be written, across all sessions",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "active",
			Help:      "Number of registered sessions",
		}),
	}
}

func (m *Metrics) recordEnqueue() {
	if m == nil {
		return
	}
	m.enqueued.Inc()
	m.queueDepth.Inc()
}

func (m *Metrics) recordReject() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

func (m *Metrics) recordDrain(n int) {
	if m == nil || n == 0 {
		return
	}
	m.queueDepth.Sub(float64(n))
}

func (m *Metrics) recordActive(delta int) {
	if m == nil {
		return
	}
	m.activeSessions.Add(float64(delta))
}
