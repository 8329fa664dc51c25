package tracing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// spansEmitted tracks emitted spans by operation (store, cache_get, cache_put)
	spansEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_trace_spans_total",
			Help: "Total number of telemetry spans emitted by operation",
		},
		[]string{"operation"},
	)

	// cacheHits tracks cache reads observed as hits
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_trace_cache_hits_total",
			Help: "Total number of cache reads observed as hits",
		},
	)

	// cacheMisses tracks cache reads observed as misses
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_trace_cache_misses_total",
			Help: "Total number of cache reads observed as misses",
		},
	)
)
