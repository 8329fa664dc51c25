// Package testutil provides testing utilities for the Redis tracing
// instrumentation.
package testutil

import (
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// NewSpanRecorder returns a tracer provider that records finished spans
// in memory. Spans appear in Ended() in close order, so for a cache/store
// pair the nested store span comes first.
func NewSpanRecorder() (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return tp, recorder
}

// Attr looks up an attribute on a recorded span.
func Attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

// HasAttr reports whether a recorded span carries an attribute at all.
func HasAttr(span sdktrace.ReadOnlySpan, key string) bool {
	_, ok := Attr(span, key)
	return ok
}

// StringAttr returns a string attribute value, or "" when absent.
func StringAttr(span sdktrace.ReadOnlySpan, key string) string {
	v, ok := Attr(span, key)
	if !ok {
		return ""
	}
	return v.AsString()
}
