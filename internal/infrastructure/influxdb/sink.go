package influxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

// dependencyName identifies the sink in logs, metrics, and health output.
const dependencyName = "influxdb"

// msPerSecond converts seconds to milliseconds for the InfluxDB API.
const msPerSecond = 1000

// connection wraps the InfluxDB client together with its non-blocking
// write API; the pair is the guarded handle's client type.
type connection struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
}

// Sink is the guarded transition-history sink.
type Sink struct {
	handle *gateway.Handle[*connection]
	logger *logging.Logger
}

// New creates the guarded sink from configuration. An empty URL yields an
// unconfigured (permanently no-op) sink.
func New(cfg config.InfluxDBConfig, logger *logging.Logger, metrics *gateway.Metrics) (*Sink, error) {
	// InfluxDB configuration is URL-only; there is no discrete-field form.
	desc := gateway.Parse(cfg.URL, 0)

	s := &Sink{
		logger: logger.With("component", "tsdb"),
	}

	handle, err := gateway.New(gateway.Options[*connection]{
		Name:       dependencyName,
		Descriptor: desc,
		Connect: func(ctx context.Context, d *gateway.Descriptor) (*connection, error) {
			return s.connect(ctx, d, cfg)
		},
		Close: func(conn *connection) {
			conn.writeAPI.Flush()
			conn.client.Close()
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}
	s.handle = handle

	return s, nil
}

// connect creates the client and verifies connectivity with a ping.
func (s *Sink) connect(ctx context.Context, desc *gateway.Descriptor, cfg config.InfluxDBConfig) (*connection, error) {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	// The InfluxDB client takes the full URL; opaque descriptors pass the
	// raw string through verbatim.
	serverURL := desc.URL("http")

	// #nosec G115 -- values validated above to be positive
	client := influxdb2.NewClientWithOptions(
		serverURL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*msPerSecond),
	)

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("server not healthy")
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	go s.drainWriteErrors(writeAPI.Errors())

	return &connection{client: client, writeAPI: writeAPI}, nil
}

// drainWriteErrors logs async write failures from the batching write API.
func (s *Sink) drainWriteErrors(errors <-chan error) {
	for err := range errors {
		s.logger.Warn("time-series write failed", "error", err)
	}
}

// Start launches the bounded connection loop. Never blocks.
func (s *Sink) Start(ctx context.Context) {
	s.handle.Start(ctx)
}

// Close flushes pending writes and shuts the client down, if connected.
func (s *Sink) Close() {
	s.handle.Close()
}

// Reporter exposes the handle's state for health aggregation.
func (s *Sink) Reporter() gateway.Reporter {
	return s.handle
}

// OnTransition registers an observer for the sink's own state transitions.
// Must be called before Start.
func (s *Sink) OnTransition(fn gateway.TransitionFunc) {
	s.handle.OnTransition(fn)
}

// RecordTransition writes one dependency state transition as a point.
//
// The method is shaped for use as a gateway.TransitionFunc observer on the
// other guarded handles. It checks the sink's own state without blocking
// so that observer dispatch never stalls on a still-connecting sink.
func (s *Sink) RecordTransition(t gateway.Transition) {
	if s.handle.State() != gateway.StateAvailable {
		return
	}
	conn, ok := s.handle.Use(context.Background())
	if !ok {
		return
	}

	fields := map[string]interface{}{
		"value": int(t.To),
	}
	if t.Err != nil {
		fields["error"] = t.Err.Error()
	}

	point := write.NewPoint(
		"dependency_state",
		map[string]string{
			"dependency": t.Dependency,
			"from":       t.From.String(),
			"to":         t.To.String(),
		},
		fields,
		t.At,
	)
	conn.writeAPI.WritePoint(point)
}

// RecordHTTPRequest writes one HTTP request observation. Used alongside the
// Prometheus metrics so showcase dashboards can be driven from either
// store.
func (s *Sink) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if s.handle.State() != gateway.StateAvailable {
		return
	}
	conn, ok := s.handle.Use(context.Background())
	if !ok {
		return
	}

	point := write.NewPoint(
		"http_requests",
		map[string]string{
			"method": method,
			"route":  route,
		},
		map[string]interface{}{
			"status":      status,
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)
	conn.writeAPI.WritePoint(point)
}
