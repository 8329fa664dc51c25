package integration

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sternrassler/redis-cache-trace/internal/testutil"
	"github.com/Sternrassler/redis-cache-trace/pkg/redistrace"
	"github.com/Sternrassler/redis-cache-trace/pkg/tracing"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, string, int, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	port, err := strconv.Atoi(mappedPort.Port())
	if err != nil {
		t.Fatalf("Failed to parse container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + mappedPort.Port(),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to ping Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		container.Terminate(ctx)
	}

	return client, host, port, cleanup
}

// setupInstrumented wires a containerized client to an in-memory span recorder.
func setupInstrumented(t *testing.T, prefixes ...string) (*redis.Client, *tracetest.SpanRecorder, string, int, func()) {
	t.Helper()

	client, host, port, cleanup := setupRedis(t)

	tp, recorder := testutil.NewSpanRecorder()
	if err := redistrace.Instrument(client, redistrace.Config{
		CachePrefixes:  prefixes,
		TracerProvider: tp,
	}); err != nil {
		cleanup()
		t.Fatalf("Failed to instrument client: %v", err)
	}

	return client, recorder, host, port, cleanup
}

func TestInstrumentedClient_HitMissLifecycle(t *testing.T) {
	client, recorder, _, _, cleanup := setupInstrumented(t, "mycache")
	defer cleanup()

	ctx := context.Background()

	if err := client.Get(ctx, "mycachekey").Err(); !errors.Is(err, redis.Nil) {
		t.Fatalf("get before write = %v, want redis.Nil", err)
	}

	value := "事实胜于雄辩"
	if err := client.Set(ctx, "mycachekey", value, time.Minute).Err(); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := client.Get(ctx, "mycachekey").Result()
	if err != nil {
		t.Fatalf("get after write failed: %v", err)
	}
	if got != value {
		t.Fatalf("get value = %q, instrumentation altered the result", got)
	}

	spans := recorder.Ended()
	if len(spans) != 6 {
		t.Fatalf("span count = %d, want 6 (store/cache pair per command)", len(spans))
	}

	// First read: store span plus a cache span recording the miss.
	if spans[0].Name() != "GET 'mycachekey'" || spans[1].Name() != "mycachekey" {
		t.Fatalf("spans[0,1] = %q, %q, want store/cache pair", spans[0].Name(), spans[1].Name())
	}
	if hit, ok := testutil.Attr(spans[1], "cache.hit"); !ok || hit.AsBool() {
		t.Errorf("first read cache.hit = %v (present=%v), want false", hit, ok)
	}
	if testutil.HasAttr(spans[1], "cache.item_size") {
		t.Error("miss must not carry cache.item_size")
	}

	// Write: cache_put with the byte size of the stored value.
	if got := testutil.StringAttr(spans[3], "operation"); got != tracing.OperationCachePut {
		t.Fatalf("spans[3] operation = %q, want cache_put", got)
	}
	if size, ok := testutil.Attr(spans[3], "cache.item_size"); !ok || size.AsInt64() != 18 {
		t.Errorf("write cache.item_size = %v (present=%v), want 18", size, ok)
	}

	// Second read: hit with the same size.
	if hit, ok := testutil.Attr(spans[5], "cache.hit"); !ok || !hit.AsBool() {
		t.Errorf("second read cache.hit = %v (present=%v), want true", hit, ok)
	}
	if size, ok := testutil.Attr(spans[5], "cache.item_size"); !ok || size.AsInt64() != 18 {
		t.Errorf("second read cache.item_size = %v (present=%v), want 18", size, ok)
	}
}

func TestInstrumentedClient_EndpointAttributes(t *testing.T) {
	client, recorder, host, port, cleanup := setupInstrumented(t, "mycache")
	defer cleanup()

	ctx := context.Background()
	_ = client.Get(ctx, "mycachekey").Err()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("span count = %d, want 2", len(spans))
	}

	for _, span := range spans {
		if got := testutil.StringAttr(span, "network.peer.address"); got != host {
			t.Errorf("network.peer.address = %q on %q, want %q", got, span.Name(), host)
		}
		if got, ok := testutil.Attr(span, "network.peer.port"); !ok || got.AsInt64() != int64(port) {
			t.Errorf("network.peer.port = %v (present=%v) on %q, want %d", got, ok, span.Name(), port)
		}
	}
}

func TestInstrumentedClient_MultiKeyRead(t *testing.T) {
	client, recorder, _, _, cleanup := setupInstrumented(t, "mycache")
	defer cleanup()

	ctx := context.Background()
	client.Set(ctx, "mycachekey1", "bla", time.Minute)
	client.Set(ctx, "mycachekey2", "blub", time.Minute)

	vals, err := client.MGet(ctx, "mycachekey1", "mycachekey2").Result()
	if err != nil {
		t.Fatalf("mget failed: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("mget returned %d values, want 2", len(vals))
	}

	spans := recorder.Ended()
	if len(spans) != 6 {
		t.Fatalf("span count = %d, want 6", len(spans))
	}

	mgetCache := spans[5]
	if mgetCache.Name() != "mycachekey1, mycachekey2" {
		t.Fatalf("spans[5] = %q, want joined key description", mgetCache.Name())
	}
	if hit, ok := testutil.Attr(mgetCache, "cache.hit"); !ok || !hit.AsBool() {
		t.Errorf("mget cache.hit = %v (present=%v), want true", hit, ok)
	}
	if size, ok := testutil.Attr(mgetCache, "cache.item_size"); !ok || size.AsInt64() != 7 {
		t.Errorf("mget cache.item_size = %v (present=%v), want 7", size, ok)
	}
}

func TestInstrumentedClient_ErrorPropagation(t *testing.T) {
	client, recorder, _, _, cleanup := setupInstrumented(t, "mycache")
	defer cleanup()

	ctx := context.Background()

	// GET against a hash is a WRONGTYPE error from the server.
	if err := client.HSet(ctx, "mycachekey", "field", "value").Err(); err != nil {
		t.Fatalf("hset failed: %v", err)
	}
	err := client.Get(ctx, "mycachekey").Err()
	if err == nil {
		t.Fatal("get on a hash key should fail with WRONGTYPE")
	}

	spans := recorder.Ended()
	if len(spans) != 3 {
		t.Fatalf("span count = %d, want 3 (hset store, failed get pair)", len(spans))
	}

	failedStore := spans[1]
	if failedStore.Name() != "GET 'mycachekey'" {
		t.Fatalf("spans[1] = %q, want the failed store span", failedStore.Name())
	}
	if failedStore.Status().Code != codes.Error {
		t.Errorf("store span status = %v, want Error", failedStore.Status().Code)
	}
	if testutil.HasAttr(spans[2], "cache.hit") {
		t.Error("no outcome may be recorded for a failed call")
	}
}

func TestInstrumentedClient_Pipeline(t *testing.T) {
	client, recorder, _, _, cleanup := setupInstrumented(t, "mycache")
	defer cleanup()

	ctx := context.Background()
	pipe := client.Pipeline()
	pipe.Set(ctx, "mycachekey", "bla", time.Minute)
	pipe.Get(ctx, "mycachekey")
	if _, err := pipe.Exec(ctx); err != nil {
		t.Fatalf("pipeline exec failed: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("span count = %d, want 1 (one span per batch)", len(spans))
	}
	if spans[0].Name() != "SET, GET" {
		t.Errorf("span name = %q, want SET, GET", spans[0].Name())
	}
	if got := testutil.StringAttr(spans[0], "command"); got != "PIPELINE" {
		t.Errorf("command = %q, want PIPELINE", got)
	}
}
