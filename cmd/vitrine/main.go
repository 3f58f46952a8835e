// Vitrine - Resilient Dependency Gateway showcase service
//
// This is the main entry point for the Vitrine service. Vitrine is an HTTP
// service built around one core dependency (SQLite) and a set of optional
// integrations (Redis cache, NATS job queue, MQTT event broker, InfluxDB
// history sink). The optional integrations connect in the background with
// bounded retries and demote permanently on failure; the service itself
// starts, serves, and shuts down regardless of their fate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/vitrinedev/vitrine-core/migrations"

	"github.com/vitrinedev/vitrine-core/internal/api"
	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/health"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/database"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/influxdb"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/mqtt"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/nats"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/redis"
	"github.com/vitrinedev/vitrine-core/internal/note"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Vitrine",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration. A missing file is not an error: defaults plus
	// environment overrides support containerised deployments.
	configPath := getConfigPath()
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database. This is the one dependency Vitrine will not start
	// without.
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Metrics registry is owned here and injected everywhere that records.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	depMetrics := gateway.NewMetrics(registry)

	// Create the guarded integration facades. None of these touch the
	// network yet; Start() launches the background connection attempts.
	cache, err := redis.New(cfg.Redis, log, depMetrics)
	if err != nil {
		return fmt.Errorf("creating cache facade: %w", err)
	}
	defer cache.Close()

	queue, err := nats.New(cfg.NATS, log, depMetrics)
	if err != nil {
		return fmt.Errorf("creating queue facade: %w", err)
	}
	defer queue.Close()

	events, err := mqtt.New(cfg.MQTT, log, depMetrics)
	if err != nil {
		return fmt.Errorf("creating events facade: %w", err)
	}
	defer events.Close()

	sink, err := influxdb.New(cfg.InfluxDB, log, depMetrics)
	if err != nil {
		return fmt.Errorf("creating history sink: %w", err)
	}
	defer sink.Close()

	// Domain service and health aggregation
	notes := note.NewService(note.NewSQLiteRepository(db.DB), cache, queue, events, log)
	aggregator := health.NewAggregator(db,
		cache.Reporter(), queue.Reporter(), events.Reporter(), sink.Reporter())

	// API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Auth:     cfg.Auth,
		Logger:   log,
		Health:   aggregator,
		Notes:    notes,
		Cache:    cache,
		Queue:    queue,
		Events:   events,
		Sink:     sink,
		Registry: registry,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Fan dependency transitions out to the WebSocket feed and the history
	// sink. Observers run outside the handle lock and must not block.
	hub := server.Hub()
	for _, facade := range []interface {
		OnTransition(gateway.TransitionFunc)
	}{cache, queue, events} {
		facade.OnTransition(hub.BroadcastTransition)
		facade.OnTransition(sink.RecordTransition)
	}
	sink.OnTransition(hub.BroadcastTransition)

	// Launch the background connection attempts. Start never blocks: an
	// unreachable integration demotes after its retry ceiling while the
	// service keeps serving.
	cache.Start(ctx)
	queue.Start(ctx)
	events.Start(ctx)
	sink.Start(ctx)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (stops accepting requests first)
	// 2. History sink, events, queue, cache (graceful disconnects)
	// 3. Database

	log.Info("Vitrine stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses VITRINE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VITRINE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
