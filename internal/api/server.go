// Package api provides the HTTP REST API and WebSocket server for Vitrine.
//
// It exposes note CRUD, raw integration endpoints (cache, jobs, events),
// health and readiness probes, Prometheus metrics, and a WebSocket feed of
// dependency transitions and note events.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitrinedev/vitrine-core/internal/health"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/influxdb"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/mqtt"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/nats"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/redis"
	"github.com/vitrinedev/vitrine-core/internal/note"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Auth     config.AuthConfig
	Logger   *logging.Logger
	Health   *health.Aggregator
	Notes    *note.Service
	Cache    *redis.Cache
	Queue    *nats.Queue
	Events   *mqtt.Events
	Sink     *influxdb.Sink       // optional: HTTP request history
	Registry *prometheus.Registry // metrics registry owned by main
	Version  string
}

// Server is the HTTP API server for Vitrine.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	authCfg config.AuthConfig
	logger  *logging.Logger
	health  *health.Aggregator
	notes   *note.Service
	cache   *redis.Cache
	queue   *nats.Queue
	events  *mqtt.Events
	sink    *influxdb.Sink
	reg     *prometheus.Registry
	version string

	server  *http.Server
	hub     *Hub
	metrics *httpMetrics
	ready   atomic.Bool
	cancel  context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, health aggregator, note service)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Health == nil {
		return nil, fmt.Errorf("health aggregator is required")
	}
	if deps.Notes == nil {
		return nil, fmt.Errorf("note service is required")
	}
	if deps.Cache == nil || deps.Queue == nil || deps.Events == nil {
		return nil, fmt.Errorf("integration facades are required (they may be unconfigured)")
	}

	s := &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		authCfg: deps.Auth,
		logger:  deps.Logger,
		health:  deps.Health,
		notes:   deps.Notes,
		cache:   deps.Cache,
		queue:   deps.Queue,
		events:  deps.Events,
		sink:    deps.Sink,
		reg:     deps.Registry,
		version: deps.Version,
	}
	if s.reg != nil {
		s.metrics = newHTTPMetrics(s.reg)
	}
	s.hub = NewHub(s.wsCfg, s.logger)

	return s, nil
}

// Hub returns the server's WebSocket hub so main can wire it as a
// dependency-transition observer before the server starts.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and launches the HTTP listener in a background
// goroutine. Readiness flips once the listener is up; the optional
// integrations never gate it. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation of background goroutines
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop the hub independently of the
	// parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	// Relay note lifecycle events from the broker to WebSocket clients.
	// Best-effort: when the broker is unconfigured or down this no-ops.
	// Runs in a goroutine because Subscribe waits for the broker to settle.
	go s.events.Subscribe(srvCtx, (mqtt.Topics{}).NoteEvent("+"), func(_ string, payload []byte) error {
		var event any
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("decoding note event: %w", err)
		}
		s.hub.Broadcast(ChannelNoteEvent, event)
		return nil
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.ready.Store(true)
	return nil
}

// Close gracefully shuts down the API server.
//
// It stops accepting new requests, waits up to 10 seconds for in-flight
// requests to complete, then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	s.ready.Store(false)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
