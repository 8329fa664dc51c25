// Package tracing emits cache and store telemetry spans for intercepted
// Redis commands.
//
// Every command gets a store span describing the real client call.
// Commands classified as cache reads or writes whose key matches a
// configured prefix additionally get a parent cache span carrying the key,
// hit/miss outcome, and item size. Spans nest per call and close in
// reverse-open order, also when the wrapped call fails.
package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sternrassler/redis-cache-trace/pkg/command"
)

// instrumentationName identifies this instrumentation library in traces.
const instrumentationName = "redis-cache-trace"

// Endpoint is the transport endpoint of the client connection. It is
// attached to spans as network.peer attributes when known; unknown fields
// are omitted, never reported as empty or zero.
type Endpoint struct {
	Address string
	Port    int
}

// Config holds the emitter configuration. It is immutable once the
// emitter is constructed, so concurrent calls need no locking.
type Config struct {
	// CachePrefixes lists the key prefixes that mark cache traffic.
	// A key is cache-eligible when it starts with any of them. The
	// default empty set means no command is ever cache-eligible.
	CachePrefixes []string
}

// Emitter opens and closes the spans for intercepted commands.
type Emitter struct {
	tracer   trace.Tracer
	prefixes []string
}

// NewEmitter creates an emitter. A nil provider falls back to the global
// OpenTelemetry tracer provider. The prefix set is copied so later
// mutation of cfg cannot leak into running instrumentation.
func NewEmitter(tp trace.TracerProvider, cfg Config) *Emitter {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	prefixes := make([]string, len(cfg.CachePrefixes))
	copy(prefixes, cfg.CachePrefixes)

	return &Emitter{
		tracer:   tp.Tracer(instrumentationName),
		prefixes: prefixes,
	}
}

// Eligible reports whether a key belongs to configured cache traffic.
// Matching is prefix-based: "blub" and "blubkeything" match prefix "blub",
// "bl" does not.
func (e *Emitter) Eligible(key string) bool {
	for _, p := range e.prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Outcome carries what could be determined from a command's result.
// Unknown fields stay absent on the span instead of defaulting.
type Outcome struct {
	Hit       bool
	HitKnown  bool
	ItemSize  int
	SizeKnown bool
}

// Call tracks the spans opened for one intercepted command. All state is
// call-local; concurrent calls produce independent Calls.
type Call struct {
	ctx   context.Context
	kind  command.Kind
	cache trace.Span
	store trace.Span
	done  bool
}

// Start opens the spans for one command: the cache span first when the
// command is cache-eligible, then the store span nested inside it. The
// returned Call's context carries the innermost span and must be passed to
// the real client call.
func (e *Emitter) Start(ctx context.Context, cmd command.Command, ep *Endpoint) *Call {
	kind := command.Classify(cmd.Name)
	key := command.SafeKey(cmd.Name, cmd.Args, cmd.Kwargs)
	epAttrs := endpointAttrs(ep)

	call := &Call{kind: kind}

	if kind != command.StoreOnly && key != "" && e.Eligible(key) {
		op := OperationCacheGet
		if kind == command.CacheWrite {
			op = OperationCachePut
		}
		attrs := append([]attribute.KeyValue{
			attrOperation.String(op),
			attrCacheKey.String(key),
		}, epAttrs...)

		ctx, call.cache = e.tracer.Start(ctx, key,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attrs...))
		spansEmitted.WithLabelValues(op).Inc()
	}

	attrs := append([]attribute.KeyValue{
		attrOperation.String(OperationStore),
		attrCommand.String(strings.ToUpper(cmd.Name)),
	}, epAttrs...)

	ctx, call.store = e.tracer.Start(ctx, cmd.Description(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
	spansEmitted.WithLabelValues(OperationStore).Inc()

	call.ctx = ctx
	return call
}

// StartPipeline opens a single store span for a batched dispatch. Cache
// spans are never emitted for pipelines: eligibility is a per-key decision
// and a batch has no single key.
func (e *Emitter) StartPipeline(ctx context.Context, summary string, ep *Endpoint) *Call {
	attrs := append([]attribute.KeyValue{
		attrOperation.String(OperationStore),
		attrCommand.String("PIPELINE"),
	}, endpointAttrs(ep)...)

	call := &Call{kind: command.StoreOnly}
	call.ctx, call.store = e.tracer.Start(ctx, summary,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
	spansEmitted.WithLabelValues(OperationStore).Inc()

	return call
}

// Context returns the context carrying the innermost open span.
func (c *Call) Context() context.Context {
	return c.ctx
}

// Finish records the outcome and closes the spans in reverse-open order:
// store first, then the enclosing cache span. err is the wrapped call's
// own failure; it is recorded on the store span and otherwise untouched.
// On failure or cancellation no outcome data is recorded. Calling Finish
// more than once is a no-op.
func (c *Call) Finish(out Outcome, err error) {
	if c.done {
		return
	}
	c.done = true

	if c.store != nil {
		if err != nil {
			c.store.RecordError(err)
			c.store.SetStatus(codes.Error, err.Error())
		}
		c.store.End()
	}

	if c.cache == nil {
		return
	}
	if err == nil {
		// cache.hit applies only to reads; writes never carry it.
		if c.kind == command.CacheRead && out.HitKnown {
			c.cache.SetAttributes(attrCacheHit.Bool(out.Hit))
			if out.Hit {
				cacheHits.Inc()
			} else {
				cacheMisses.Inc()
			}
		}
		if out.SizeKnown {
			c.cache.SetAttributes(attrCacheItemSize.Int(out.ItemSize))
		}
	}
	c.cache.End()
}

func endpointAttrs(ep *Endpoint) []attribute.KeyValue {
	if ep == nil {
		return nil
	}
	var attrs []attribute.KeyValue
	if ep.Address != "" {
		attrs = append(attrs, semconv.NetworkPeerAddress(ep.Address))
	}
	if ep.Port > 0 {
		attrs = append(attrs, semconv.NetworkPeerPort(ep.Port))
	}
	return attrs
}
