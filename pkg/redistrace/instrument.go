package redistrace

import (
	"errors"
	"net"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sternrassler/redis-cache-trace/pkg/logging"
	"github.com/Sternrassler/redis-cache-trace/pkg/tracing"
)

var (
	// instrumentedClients tracks instrumented clients by shape
	instrumentedClients = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_trace_instrumented_clients_total",
			Help: "Total number of Redis clients instrumented by shape",
		},
		[]string{"shape"},
	)
)

// Client is the capability this package needs from a go-redis client
// shape: a command-dispatch hook point.
type Client interface {
	AddHook(redis.Hook)
}

// EndpointFn reports the transport endpoint for span attributes. A nil
// result means the shape cannot report one and the attributes are omitted.
type EndpointFn func() *tracing.Endpoint

// Shape resolves the endpoint accessor for one supported client shape.
type Shape struct {
	// Name labels the shape in logs and metrics.
	Name string

	// Match reports whether the client is of this shape and, if so, how
	// to look up its transport endpoint.
	Match func(Client) (EndpointFn, bool)
}

// Config configures instrumentation for one client. It is read once at
// Instrument time; the per-call path only sees immutable state.
type Config struct {
	// CachePrefixes lists the key prefixes that count as cache traffic.
	// Default empty: no cache spans are ever emitted.
	CachePrefixes []string

	// TracerProvider overrides the global OpenTelemetry provider,
	// mainly for tests.
	TracerProvider trace.TracerProvider
}

var (
	mu     sync.Mutex
	shapes []Shape

	// instrumented entries are never released. Registration is a
	// setup-time operation and clients are expected to live for the
	// process, so the map stays bounded by the number of clients ever
	// instrumented. A process that churns clients keeps them reachable
	// through it.
	instrumented = make(map[Client]struct{})
)

func init() {
	RegisterShape(Shape{Name: "client", Match: matchClient})
	RegisterShape(Shape{Name: "cluster", Match: matchCluster})
	RegisterShape(Shape{Name: "ring", Match: matchRing})
}

// RegisterShape adds a client shape to the setup-time registry. Custom
// shapes must be registered before the clients using them are
// instrumented; the per-call path never consults the registry.
func RegisterShape(s Shape) {
	mu.Lock()
	defer mu.Unlock()
	shapes = append(shapes, s)
}

// Instrument wraps the client's command dispatch so every call is
// classified, measured, and reported as spans. Instrumenting the same
// client twice is a no-op.
func Instrument(client Client, cfg Config) error {
	if client == nil {
		return errors.New("redis client is required")
	}

	mu.Lock()
	defer mu.Unlock()

	logger := logging.NewLogger("redistrace")

	if _, ok := instrumented[client]; ok {
		logger.Debug().Msg("Client already instrumented, skipping")
		return nil
	}

	name, endpointFn := resolveShape(client)

	emitter := tracing.NewEmitter(cfg.TracerProvider, tracing.Config{
		CachePrefixes: cfg.CachePrefixes,
	})
	client.AddHook(&tracingHook{
		emitter:  emitter,
		endpoint: endpointFn,
	})

	instrumented[client] = struct{}{}
	instrumentedClients.WithLabelValues(name).Inc()

	logger.Debug().
		Str("shape", name).
		Int("cache_prefixes", len(cfg.CachePrefixes)).
		Msg("Instrumented redis client")

	return nil
}

// resolveShape must be called with mu held.
func resolveShape(client Client) (string, EndpointFn) {
	for _, s := range shapes {
		if fn, ok := s.Match(client); ok {
			return s.Name, fn
		}
	}
	// Unknown shapes still get spans, just without endpoint attributes.
	return "unknown", nil
}

func matchClient(client Client) (EndpointFn, bool) {
	c, ok := client.(*redis.Client)
	if !ok {
		return nil, false
	}
	opt := c.Options()
	return func() *tracing.Endpoint {
		return endpointFromAddr(opt.Addr)
	}, true
}

// Cluster and ring clients route commands across nodes, so no single peer
// endpoint can be reported for a call.
func matchCluster(client Client) (EndpointFn, bool) {
	if _, ok := client.(*redis.ClusterClient); !ok {
		return nil, false
	}
	return nil, true
}

func matchRing(client Client) (EndpointFn, bool) {
	if _, ok := client.(*redis.Ring); !ok {
		return nil, false
	}
	return nil, true
}

// endpointFromAddr parses a host:port address. A missing or unparseable
// part is omitted rather than guessed.
func endpointFromAddr(addr string) *tracing.Endpoint {
	if addr == "" {
		return nil
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// Unix socket paths and bare hosts have no port.
		return &tracing.Endpoint{Address: addr}
	}
	ep := &tracing.Endpoint{Address: host}
	if port, err := strconv.Atoi(portStr); err == nil {
		ep.Port = port
	}
	return ep
}
