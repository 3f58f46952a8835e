package nats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	natsio "github.com/nats-io/nats.go"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

// dependencyName identifies the queue in logs, metrics, and health output.
const dependencyName = "nats"

const (
	// defaultPort is the standard NATS client port.
	defaultPort = 4222

	// connectTimeout bounds the dial within each connection attempt.
	connectTimeout = 5 * time.Second
)

// Job is the wire format for enqueued background jobs.
type Job struct {
	// ID is the globally unique job ID.
	ID string `json:"id"`

	// Type is the job type, forming the subject suffix
	// (e.g. "note.index" publishes to "vitrine.jobs.note.index").
	Type string `json:"type"`

	// Payload is the job body, opaque to the queue.
	Payload json.RawMessage `json:"payload"`

	// EnqueuedAt is when the job was accepted.
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue is the guarded background-job queue.
//
// Thread Safety: safe for concurrent use; the NATS connection multiplexes
// internally.
type Queue struct {
	handle *gateway.Handle[*natsio.Conn]
	logger *logging.Logger
	prefix string
}

// New creates the guarded queue from configuration.
func New(cfg config.NATSConfig, logger *logging.Logger, metrics *gateway.Metrics) (*Queue, error) {
	desc := gateway.Parse(cfg.URL, defaultPortOr(cfg.Port))
	if desc == nil {
		desc = gateway.FromParts(cfg.Host, defaultPortOr(cfg.Port), cfg.Username, cfg.Password)
	}

	log := logger.With("component", "queue")
	if desc != nil && desc.Opaque() {
		log.Warn("queue connection string is not URL-shaped, passing through verbatim",
			"target", desc.Redacted(),
		)
	}

	q := &Queue{
		logger: log,
		prefix: cfg.SubjectPrefix,
	}
	if q.prefix == "" {
		q.prefix = "vitrine.jobs"
	}

	handle, err := gateway.New(gateway.Options[*natsio.Conn]{
		Name:       dependencyName,
		Descriptor: desc,
		Connect:    q.connect,
		Close: func(conn *natsio.Conn) {
			conn.Close()
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}
	q.handle = handle

	return q, nil
}

// connect dials the NATS server.
//
// Reconnect is disabled on purpose: the gateway owns retry, and NATS's
// reconnect buffer would otherwise accumulate publishes in memory while the
// broker is down. A closed connection demotes the handle instead.
func (q *Queue) connect(_ context.Context, desc *gateway.Descriptor) (*natsio.Conn, error) {
	opts := []natsio.Option{
		natsio.Name("vitrine-core"),
		natsio.Timeout(connectTimeout),
		natsio.RetryOnFailedConnect(false),
		natsio.MaxReconnects(0),
		natsio.ClosedHandler(func(conn *natsio.Conn) {
			err := conn.LastError()
			if err == nil {
				err = natsio.ErrConnectionClosed
			}
			q.handle.Demote(err)
		}),
	}
	if desc.Username != "" || desc.Password != "" {
		opts = append(opts, natsio.UserInfo(desc.Username, desc.Password))
	}

	return natsio.Connect(desc.URL("nats"), opts...)
}

// defaultPortOr falls back to the standard NATS port.
func defaultPortOr(port int) int {
	if port <= 0 {
		return defaultPort
	}
	return port
}

// Start launches the bounded connection loop. Never blocks.
func (q *Queue) Start(ctx context.Context) {
	q.handle.Start(ctx)
}

// Close releases the connection if one was established.
func (q *Queue) Close() {
	q.handle.Close()
}

// Reporter exposes the handle's state for health aggregation.
func (q *Queue) Reporter() gateway.Reporter {
	return q.handle
}

// OnTransition registers an observer for queue state transitions.
func (q *Queue) OnTransition(fn gateway.TransitionFunc) {
	q.handle.OnTransition(fn)
}

// Subject returns the full subject for a job type.
func (q *Queue) Subject(jobType string) string {
	return q.prefix + "." + jobType
}

// Enqueue publishes a job of the given type.
//
// Returns the job ID and true when the job reached a live broker. A
// degraded queue returns ("", false) with no error and no side effect; the
// caller decides whether that is worth reporting to its own caller.
func (q *Queue) Enqueue(ctx context.Context, jobType string, payload []byte) (string, bool) {
	conn, ok := q.handle.Use(ctx)
	if !ok {
		return "", false
	}

	job := Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		q.logger.Warn("failed to encode job", "type", jobType, "error", err)
		return "", false
	}

	if err := conn.Publish(q.Subject(jobType), data); err != nil {
		q.handle.Demote(err)
		return "", false
	}
	return job.ID, true
}
