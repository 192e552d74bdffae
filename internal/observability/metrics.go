package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts aggregate cache hits by key family.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicle_cache_hits_total",
		Help: "Total number of cache hits by key family",
	}, []string{"family"})

	// CacheMisses counts aggregate cache misses by key family.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicle_cache_misses_total",
		Help: "Total number of cache misses by key family",
	}, []string{"family"})

	// CacheInvalidations counts invalidation fan-out removals by trigger.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicle_cache_invalidations_total",
		Help: "Total number of cache invalidations by triggering operation",
	}, []string{"operation"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicle_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chronicle_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
