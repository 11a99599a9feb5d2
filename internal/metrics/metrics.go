package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the emulator's Prometheus collectors. Each server
// instance owns its registry, so independently configured servers in one
// process never collide on collector registration.
type Metrics struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	SimulatedLatency *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmsim",
			Name:      "requests_total",
			Help:      "Chat completion requests served, by mode and finish reason.",
		}, []string{"mode", "finish_reason"}),
		SimulatedLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llmsim",
			Name:      "simulated_latency_seconds",
			Help:      "Simulated end-to-end latency applied per request.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"mode"}),
	}

	registry.MustRegister(m.Requests, m.SimulatedLatency)
	return m
}

// Observe records one served request.
func (m *Metrics) Observe(stream bool, finishReason string, simulated time.Duration) {
	mode := "blocking"
	if stream {
		mode = "stream"
	}
	m.Requests.WithLabelValues(mode, finishReason).Inc()
	m.SimulatedLatency.WithLabelValues(mode).Observe(simulated.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
