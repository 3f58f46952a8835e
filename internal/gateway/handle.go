package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

// Default timeouts for guarded handles.
const (
	// defaultConnectTimeout bounds each individual connection attempt.
	defaultConnectTimeout = 10 * time.Second

	// defaultUseWait bounds how long Use blocks while the handle is still
	// Connecting before treating the dependency as unavailable for that call.
	defaultUseWait = 5 * time.Second
)

// ConnectFunc establishes a client for the dependency described by desc.
// It is invoked under a per-attempt timeout context and must respect it.
type ConnectFunc[C any] func(ctx context.Context, desc *Descriptor) (C, error)

// CloseFunc releases a client. Optional; used on shutdown and when a
// promoted client is demoted.
type CloseFunc[C any] func(client C)

// Options configures a guarded handle.
type Options[C any] struct {
	// Name identifies the dependency in logs, metrics, and health output.
	Name string

	// Descriptor holds the parsed connection settings. nil means the
	// dependency is unconfigured and the handle is permanently inert.
	Descriptor *Descriptor

	// Connect establishes the client. Required.
	Connect ConnectFunc[C]

	// Close releases the client. Optional.
	Close CloseFunc[C]

	// Retry is the bounded retry policy. Zero value falls back to
	// DefaultPolicy.
	Retry Policy

	// ConnectTimeout bounds each connection attempt. Zero uses the default.
	ConnectTimeout time.Duration

	// Logger is required. Transition log lines carry the dependency name.
	Logger *logging.Logger

	// Metrics exports the handle state as a gauge. Optional.
	Metrics *Metrics
}

// Handle is a guarded wrapper around an external-dependency client.
// See the package documentation for the lifecycle contract.
type Handle[C any] struct {
	name           string
	desc           *Descriptor
	connect        ConnectFunc[C]
	closeFn        CloseFunc[C]
	retry          Policy
	connectTimeout time.Duration
	logger         *logging.Logger
	metrics        *Metrics

	mu      sync.RWMutex
	state   State
	client  C
	lastErr error
	closing bool

	// settled is closed when the connect loop finishes, whichever way.
	// For unconfigured handles it is closed at construction.
	settled chan struct{}
	started bool

	obsMu     sync.RWMutex
	observers []TransitionFunc
}

// New creates a guarded handle.
//
// If opts.Descriptor is nil the handle starts (and stays) Unconfigured and
// this is logged once at info level. Otherwise the handle starts in
// Connecting; the connection attempt itself does not begin until Start is
// called.
func New[C any](opts Options[C]) (*Handle[C], error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("gateway: handle name is required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("gateway: logger is required")
	}
	if opts.Connect == nil {
		return nil, fmt.Errorf("gateway: connect function is required")
	}

	retry := opts.Retry
	if retry == (Policy{}) {
		retry = DefaultPolicy
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	h := &Handle[C]{
		name:           opts.Name,
		desc:           opts.Descriptor,
		connect:        opts.Connect,
		closeFn:        opts.Close,
		retry:          retry,
		connectTimeout: connectTimeout,
		logger:         opts.Logger.With("dependency", opts.Name),
		metrics:        opts.Metrics,
		settled:        make(chan struct{}),
	}

	if h.desc == nil {
		h.state = StateUnconfigured
		close(h.settled)
		h.logger.Info("dependency not configured, operations will no-op")
	} else {
		h.state = StateConnecting
	}
	if h.metrics != nil {
		h.metrics.setState(h.name, h.state)
	}

	return h, nil
}

// OnTransition registers an observer for state transitions. Must be called
// before Start; observers registered later may miss transitions.
func (h *Handle[C]) OnTransition(fn TransitionFunc) {
	h.obsMu.Lock()
	h.observers = append(h.observers, fn)
	h.obsMu.Unlock()
}

// Start launches the bounded connection loop in a background goroutine.
// It is a no-op for unconfigured handles and idempotent otherwise.
//
// Start never blocks: process startup completes regardless of dependency
// reachability.
func (h *Handle[C]) Start(ctx context.Context) {
	h.mu.Lock()
	if h.desc == nil || h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go h.connectLoop(ctx)
}

// connectLoop runs the retry policy to completion: promotion on the first
// successful attempt, permanent demotion after the ceiling.
func (h *Handle[C]) connectLoop(ctx context.Context) {
	defer close(h.settled)

	var lastErr error
	maxAttempts := h.retry.attempts()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				h.transition(StateUnavailable, ctx.Err())
				return
			case <-time.After(h.retry.Delay(attempt - 1)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, h.connectTimeout)
		client, err := h.connect(attemptCtx, h.desc)
		cancel()

		if err == nil {
			h.mu.Lock()
			h.client = client
			h.lastErr = nil
			h.mu.Unlock()
			h.transition(StateAvailable, nil)
			return
		}

		lastErr = err
		h.logger.Warn("dependency connection attempt failed",
			"target", h.desc.Redacted(),
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)

		if ctx.Err() != nil {
			h.transition(StateUnavailable, ctx.Err())
			return
		}
	}

	h.transition(StateUnavailable,
		fmt.Errorf("retry ceiling reached after %d attempts: %w", maxAttempts, lastErr))
}

// Use returns the client when the handle is Available.
//
// While the handle is Connecting, Use blocks up to a bounded wait for the
// connection loop to settle; if it has not settled in time the call is
// treated as Unavailable (the handle itself keeps connecting).
//
// The returned bool is false for Unconfigured, Unavailable, and timed-out
// Connecting states. Callers must return their operation's neutral default
// in that case rather than an error.
func (h *Handle[C]) Use(ctx context.Context) (C, bool) {
	h.mu.RLock()
	state := h.state
	h.mu.RUnlock()

	if state == StateConnecting {
		select {
		case <-h.settled:
		case <-ctx.Done():
		case <-time.After(defaultUseWait):
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state != StateAvailable {
		var zero C
		return zero, false
	}
	return h.client, true
}

// Demote marks the handle Unavailable after a runtime call failure on an
// Available client. It is a no-op unless the handle is currently Available,
// so concurrent failing calls produce a single transition and a single log
// line.
func (h *Handle[C]) Demote(err error) {
	h.mu.RLock()
	available := h.state == StateAvailable && !h.closing
	h.mu.RUnlock()
	if !available {
		return
	}
	h.transition(StateUnavailable, err)
}

// Close releases the underlying client if one was established.
//
// The closing flag is set before the client is torn down: client libraries
// fire their closed/connection-lost callbacks during a graceful close, and
// those callbacks route through Demote. Without the flag a clean shutdown
// would record a spurious available→unavailable transition.
func (h *Handle[C]) Close() {
	h.mu.Lock()
	hadClient := h.state == StateAvailable && !h.closing
	client := h.client
	h.closing = true
	h.mu.Unlock()

	if hadClient && h.closeFn != nil {
		h.closeFn(client)
	}
}

// Name returns the dependency name.
func (h *Handle[C]) Name() string {
	return h.name
}

// State returns the current lifecycle state.
func (h *Handle[C]) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// LastError returns the most recent connection or runtime error.
func (h *Handle[C]) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr
}

// transition moves the handle to a new state, logging the change exactly
// once and notifying metrics and observers. Idempotent: a no-op when the
// state is unchanged.
func (h *Handle[C]) transition(to State, err error) {
	h.mu.Lock()
	from := h.state
	if from == to {
		h.mu.Unlock()
		return
	}
	h.state = to
	if err != nil {
		h.lastErr = err
	}
	h.mu.Unlock()

	switch to {
	case StateAvailable:
		h.logger.Info("dependency state changed",
			"from", from.String(),
			"to", to.String(),
			"target", h.desc.Redacted(),
		)
	case StateUnavailable:
		h.logger.Error("dependency state changed",
			"from", from.String(),
			"to", to.String(),
			"error", err,
		)
	default:
		h.logger.Info("dependency state changed",
			"from", from.String(),
			"to", to.String(),
		)
	}

	if h.metrics != nil {
		h.metrics.setState(h.name, to)
		h.metrics.countTransition(h.name, to)
	}

	t := Transition{
		Dependency: h.name,
		From:       from,
		To:         to,
		Err:        err,
		At:         time.Now().UTC(),
	}
	h.obsMu.RLock()
	observers := h.observers
	h.obsMu.RUnlock()
	for _, fn := range observers {
		fn(t)
	}
}
