package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics records upstream catalog fetch activity, including how often
// the service falls back to the demo dataset.
type CatalogMetrics struct {
	duration *prometheus.HistogramVec
	fetches  *prometheus.CounterVec
	demoHits prometheus.Counter
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_fetch_duration_seconds",
		Help:    "Duration of upstream catalog fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_fetch_total",
		Help: "Upstream catalog fetches by outcome.",
	}, []string{"outcome"})
	demoHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_demo_responses_total",
		Help: "Catalog responses served from the built-in demo dataset.",
	})
	reg.MustRegister(duration, fetches, demoHits)
	return &CatalogMetrics{
		duration: duration,
		fetches:  fetches,
		demoHits: demoHits,
	}
}

// ObserveFetch records one upstream fetch with its outcome ("ok" or "error").
func (c *CatalogMetrics) ObserveFetch(outcome string, duration time.Duration) {
	if c == nil || c.fetches == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	c.fetches.WithLabelValues(outcome).Inc()
	c.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncDemoResponse increments the demo fallback counter.
func (c *CatalogMetrics) IncDemoResponse() {
	if c == nil || c.demoHits == nil {
		return
	}
	c.demoHits.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
