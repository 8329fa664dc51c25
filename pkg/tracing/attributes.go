package tracing

import "go.opentelemetry.io/otel/attribute"

// Span operations. Together with the attribute keys below they form the
// wire contract trace consumers depend on.
const (
	// OperationStore marks the span for the real client call.
	OperationStore = "store"

	// OperationCacheGet marks the parent span of a cache-eligible read.
	OperationCacheGet = "cache_get"

	// OperationCachePut marks the parent span of a cache-eligible write.
	OperationCachePut = "cache_put"
)

// Attribute keys attached to emitted spans. Endpoint attributes use the
// OpenTelemetry semconv network.peer.address / network.peer.port keys.
var (
	attrOperation     = attribute.Key("operation")
	attrCommand       = attribute.Key("command")
	attrCacheKey      = attribute.Key("cache.key")
	attrCacheHit      = attribute.Key("cache.hit")
	attrCacheItemSize = attribute.Key("cache.item_size")
)
