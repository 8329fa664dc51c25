package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/redis-cache-trace/pkg/logging"
	"github.com/Sternrassler/redis-cache-trace/pkg/redistrace"
	"github.com/Sternrassler/redis-cache-trace/pkg/telemetry"
)

func main() {
	// Configuration from environment
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")
	prefixes := strings.Split(getEnv("CACHE_PREFIXES", "mycache"), ",")

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	})

	ctx := context.Background()

	// Tracing pipeline (OTLP exporter, env-driven)
	shutdown, err := telemetry.InitTracing(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Trace provider shutdown failed")
		}
	}()

	// Setup Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", redisURL).Msg("Connected to Redis")

	// Instrument the client with cache tracing
	if err := redistrace.Instrument(redisClient, redistrace.Config{
		CachePrefixes: prefixes,
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to instrument Redis client")
	}

	// Emit a representative command mix so the demo produces spans immediately
	runDemoWorkload(ctx, redisClient, logger)

	// HTTP Server
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(redisClient))
	http.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	logger.Info().Str("addr", addr).Strs("cache_prefixes", prefixes).Msg("Starting trace demo server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// runDemoWorkload issues a miss, a write, a hit, a multi-key read, and a
// store-only command against the instrumented client.
func runDemoWorkload(ctx context.Context, client *redis.Client, logger zerolog.Logger) {
	_ = client.Get(ctx, "mycachekey").Err()
	_ = client.Set(ctx, "mycachekey", "cached value", time.Minute).Err()
	_ = client.Get(ctx, "mycachekey").Err()
	_ = client.MGet(ctx, "mycachekey", "mycacheother").Err()
	_ = client.HSet(ctx, "demo:hash", "field", "value").Err()

	logger.Info().Msg("Demo workload complete, spans emitted")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(client *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			http.Error(w, fmt.Sprintf("Redis unavailable: %v", err), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
