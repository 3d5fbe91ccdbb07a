package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records counters and timings for cart operations and
// collaborator calls. All methods are nil-safe so wiring stays optional.
type CartMetrics struct {
	operations      *prometheus.CounterVec
	checkouts       *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout initiations by result.",
	}, []string{"result"})
	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of collaborator calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collaborator", "op"})
	reg.MustRegister(operations, checkouts, upstreamLatency)
	return &CartMetrics{
		operations:      operations,
		checkouts:       checkouts,
		upstreamLatency: upstreamLatency,
	}
}

// IncOperation counts one cart mutation attempt.
func (c *CartMetrics) IncOperation(op, outcome string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// IncCheckout counts one checkout initiation by result.
func (c *CartMetrics) IncCheckout(result string) {
	if c == nil || c.checkouts == nil {
		return
	}
	c.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveUpstream records the duration of one collaborator call.
func (c *CartMetrics) ObserveUpstream(collaborator, op string, duration time.Duration) {
	if c == nil || c.upstreamLatency == nil {
		return
	}
	c.upstreamLatency.WithLabelValues(normalizeLabel(collaborator), normalizeLabel(op)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
