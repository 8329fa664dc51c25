// Package metrics provides the centralized Prometheus metrics registry for
// the Redis tracing instrumentation. All metrics are defined in their
// respective packages (tracing, redistrace) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the instrumentation.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Span Metrics (pkg/tracing):
//   - redis_trace_spans_total{operation} (Counter): Spans emitted by operation
//     (store, cache_get, cache_put)
//   - redis_trace_cache_hits_total (Counter): Cache reads observed as hits
//   - redis_trace_cache_misses_total (Counter): Cache reads observed as misses
//
// Setup Metrics (pkg/redistrace):
//   - redis_trace_instrumented_clients_total{shape} (Counter): Clients
//     instrumented by shape (client, cluster, ring, unknown)
//
// Example Prometheus Queries:
//
//   # Observed Cache Hit Rate
//   rate(redis_trace_cache_hits_total[5m]) /
//   (rate(redis_trace_cache_hits_total[5m]) + rate(redis_trace_cache_misses_total[5m]))
//
//   # Cache Traffic Share
//   sum(rate(redis_trace_spans_total{operation=~"cache_.*"}[5m])) /
//   sum(rate(redis_trace_spans_total{operation="store"}[5m]))
