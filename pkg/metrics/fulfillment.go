package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records order movement through the fulfillment pipeline.
type FulfillmentMetrics struct {
	promotions *prometheus.CounterVec
	conflicts  prometheus.Counter
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	promotions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_promotions_total",
		Help: "Order promotions by target stage.",
	}, []string{"stage"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_version_conflicts_total",
		Help: "Promotions rejected because another session updated the order first.",
	})
	reg.MustRegister(promotions, conflicts)
	return &FulfillmentMetrics{
		promotions: promotions,
		conflicts:  conflicts,
	}
}

// IncPromotion increments the promotion counter for the target stage.
func (f *FulfillmentMetrics) IncPromotion(stage string) {
	if f == nil || f.promotions == nil {
		return
	}
	f.promotions.WithLabelValues(normalizeLabel(stage)).Inc()
}

// IncVersionConflict increments the rejected-promotion counter.
func (f *FulfillmentMetrics) IncVersionConflict() {
	if f == nil || f.conflicts == nil {
		return
	}
	f.conflicts.Inc()
}
