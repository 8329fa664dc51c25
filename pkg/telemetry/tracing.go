// Package telemetry provides OpenTelemetry tracing initialization for
// standalone services and demos.
//
// Library consumers should pass their own trace.TracerProvider via the
// instrumentation Config instead; this package is only needed when the
// process owns the tracing pipeline itself.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Sternrassler/redis-cache-trace/pkg/logging"
)

// defaultServiceName is the default OpenTelemetry service name.
// Can be overridden via OTEL_SERVICE_NAME environment variable.
const defaultServiceName = "redis-cache-trace"

// stripScheme removes http:// or https:// prefix from an endpoint URL.
// gRPC clients expect host:port format only.
func stripScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return endpoint
}

// InitTracing initializes OpenTelemetry tracing with an OTLP gRPC exporter.
// Configuration is done via environment variables:
//   - OTEL_SERVICE_NAME: Service name (default: redis-cache-trace)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP collector endpoint (default: localhost:4317)
//   - OTEL_TRACES_SAMPLER_ARG: Sampling ratio (default: 0.1 for 10%)
//
// The returned function shuts down the trace provider and flushes pending spans.
func InitTracing(ctx context.Context) (func(context.Context) error, error) {
	logger := logging.NewLogger("telemetry")

	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}
	endpoint = stripScheme(endpoint)

	samplingRatio := 0.1
	if ratioStr := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); ratioStr != "" {
		if ratio, err := strconv.ParseFloat(ratioStr, 64); err == nil {
			samplingRatio = ratio
		} else {
			logger.Warn().
				Str("value", ratioStr).
				Float64("default", samplingRatio).
				Msg("Invalid OTEL_TRACES_SAMPLER_ARG, using default")
		}
	}

	logger.Info().
		Str("endpoint", endpoint).
		Str("service", serviceName).
		Float64("sampling_ratio", samplingRatio).
		Msg("Initializing OpenTelemetry tracing")

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // Use WithTLSCredentials() in production
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(samplingRatio))),
	)

	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info().Msg("OpenTelemetry tracing initialized")

	return tp.Shutdown, nil
}
