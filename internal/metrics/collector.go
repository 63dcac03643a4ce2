// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes the engine's prometheus metrics.
type Collector struct {
	retrievalsTotal   *prometheus.CounterVec
	retrievalDuration prometheus.Histogram
	retrievalResults  prometheus.Histogram

	expertInvocations *prometheus.CounterVec
	expertDuration    *prometheus.HistogramVec

	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	candidatesPerTurn  prometheus.Histogram

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewCollector registers the engine metrics on the given registerer. A nil
// registerer falls back to the default prometheus registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		retrievalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retrievals_total",
				Help:      "Total number of memory retrievals",
			},
			[]string{"outcome"},
		),
		retrievalDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieval_duration_seconds",
				Help:      "Memory retrieval duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		retrievalResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieval_results",
				Help:      "Number of memories returned per retrieval",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),
		expertInvocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expert_invocations_total",
				Help:      "Total expert invocations by expert and outcome",
			},
			[]string{"expert", "outcome"},
		),
		expertDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "expert_duration_seconds",
				Help:      "Expert invocation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"expert"},
		),
		resolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Ensemble resolutions by method",
			},
			[]string{"method"},
		),
		resolutionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolution_duration_seconds",
				Help:      "Ensemble resolve duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		candidatesPerTurn: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "candidates_per_turn",
				Help:      "Surviving candidates per ensemble resolution",
				Buckets:   []float64{0, 1, 2, 3, 4, 5, 6},
			},
		),
		cacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Retrieval cache hits",
			},
		),
		cacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Retrieval cache misses",
			},
		),
	}
}

// RecordRetrieval records one retrieval with its outcome label
// (ok, degraded, empty, error).
func (c *Collector) RecordRetrieval(outcome string, results int, duration time.Duration) {
	c.retrievalsTotal.WithLabelValues(outcome).Inc()
	c.retrievalDuration.Observe(duration.Seconds())
	c.retrievalResults.Observe(float64(results))
}

// RecordExpert records one expert invocation (outcome: ok, timeout, error,
// rejected).
func (c *Collector) RecordExpert(expert string, outcome string, duration time.Duration) {
	c.expertInvocations.WithLabelValues(expert, outcome).Inc()
	c.expertDuration.WithLabelValues(expert).Observe(duration.Seconds())
}

// RecordResolution records one completed arbitration.
func (c *Collector) RecordResolution(method string, candidates int, duration time.Duration) {
	c.resolutionsTotal.WithLabelValues(method).Inc()
	c.resolutionDuration.Observe(duration.Seconds())
	c.candidatesPerTurn.Observe(float64(candidates))
}

// RecordCacheHit increments the cache hit counter.
func (c *Collector) RecordCacheHit() { c.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func (c *Collector) RecordCacheMiss() { c.cacheMisses.Inc() }
