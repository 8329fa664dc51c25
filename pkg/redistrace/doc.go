// Package redistrace instruments go-redis clients with cache-aware
// telemetry spans.
//
// Every command dispatched through an instrumented client is classified
// and reported without altering its behavior or result:
//
// - Commands with whole-key cache semantics (GET, MGET, SET, SETEX) whose
//   key matches a configured prefix produce a cache span (cache_get or
//   cache_put) with a nested store span.
// - Every other command produces a single store span.
//
// # Basic Usage
//
//	rdb := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	err := redistrace.Instrument(rdb, redistrace.Config{
//		CachePrefixes: []string{"mycache"},
//	})
//	if err != nil {
//		return err
//	}
//
//	// All calls are now traced.
//	rdb.Get(ctx, "mycachekey")
//
// Instrumenting the same client twice is a no-op, so wrapped calls are
// never reported more than once.
//
// # Client Shapes
//
// Single clients, cluster clients, and rings are supported through the
// same contract; only the connection-endpoint lookup differs per shape.
// Shapes are resolved once at Instrument time from a registration table —
// the per-call path never inspects client types. Custom shapes can be
// added with RegisterShape before instrumenting them. Cluster and ring
// clients route commands across nodes, so their spans carry no
// network.peer attributes.
//
// # Span Attributes
//
//   - operation: "store", "cache_get", or "cache_put"
//   - command: uppercased command name (store spans)
//   - cache.key, cache.hit, cache.item_size: cache spans, present only
//     when determinable
//   - network.peer.address, network.peer.port: when the transport
//     endpoint is known
//
// The wrapped call's failure is recorded on the store span and propagated
// to the caller unchanged.
package redistrace
