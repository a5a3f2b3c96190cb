// Package metrics exposes the gateway's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	// Requests counts stream requests by outcome.
	Requests *prometheus.CounterVec

	// ActiveStreams tracks the number of open streaming connections.
	ActiveStreams prometheus.Gauge

	// EventsRelayed counts engine events forwarded to callers, by kind.
	EventsRelayed *prometheus.CounterVec

	// StreamDuration observes wall-clock stream duration in seconds.
	StreamDuration prometheus.Histogram
}

// New registers the gateway collectors with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentgate",
			Name:      "requests_total",
			Help:      "Stream requests by outcome.",
		}, []string{"outcome"}),
		ActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentgate",
			Name:      "active_streams",
			Help:      "Currently open streaming connections.",
		}),
		EventsRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentgate",
			Name:      "events_relayed_total",
			Help:      "Engine events forwarded to callers, by kind.",
		}, []string{"kind"}),
		StreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentgate",
			Name:      "stream_duration_seconds",
			Help:      "Wall-clock duration of streaming requests.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

// Outcome labels for the request counter.
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)
