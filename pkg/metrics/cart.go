package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart operation outcomes.
type CartMetrics struct {
	operations      *prometheus.CounterVec
	persistFailures prometheus.Counter
	reloads         *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by kind and result.",
	}, []string{"op", "result"})
	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart writes that failed to reach the key-value store.",
	})
	reloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_reloads_total",
		Help: "Cart reloads from the key-value store by trigger.",
	}, []string{"trigger"})
	reg.MustRegister(operations, persistFailures, reloads)
	return &CartMetrics{
		operations:      operations,
		persistFailures: persistFailures,
		reloads:         reloads,
	}
}

// IncOperation counts one cart operation with its result.
func (c *CartMetrics) IncOperation(op, result string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(op), normalizeLabel(result)).Inc()
}

// IncPersistFailure counts a failed write to the key-value store.
func (c *CartMetrics) IncPersistFailure() {
	if c == nil || c.persistFailures == nil {
		return
	}
	c.persistFailures.Inc()
}

// IncReload counts a cart reload with the trigger that caused it.
func (c *CartMetrics) IncReload(trigger string) {
	if c == nil || c.reloads == nil {
		return
	}
	c.reloads.WithLabelValues(normalizeLabel(trigger)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
