package gateway

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

// fastPolicy keeps retry delays negligible for tests.
var fastPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func testDescriptor() *Descriptor {
	return FromParts("localhost", 1, "", "")
}

// waitForState polls until the handle reaches want or the deadline expires.
func waitForState(t *testing.T, r Reporter, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", r.State(), want)
}

func TestHandle_Unconfigured(t *testing.T) {
	h, err := New(Options[string]{
		Name:   "cache",
		Logger: logging.Default(),
		Connect: func(_ context.Context, _ *Descriptor) (string, error) {
			t.Fatal("connect must not be called for unconfigured handle")
			return "", nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if h.State() != StateUnconfigured {
		t.Errorf("State() = %v, want %v", h.State(), StateUnconfigured)
	}

	// Start is a no-op; Use returns not-ok immediately.
	h.Start(context.Background())
	if _, ok := h.Use(context.Background()); ok {
		t.Error("Use() = ok, want not-ok for unconfigured handle")
	}

	// Demotion of an unconfigured handle is a no-op.
	h.Demote(errors.New("boom"))
	if h.State() != StateUnconfigured {
		t.Errorf("State() after Demote = %v, want %v", h.State(), StateUnconfigured)
	}
}

func TestHandle_ConnectSuccess(t *testing.T) {
	h, err := New(Options[string]{
		Name:       "cache",
		Descriptor: testDescriptor(),
		Logger:     logging.Default(),
		Retry:      fastPolicy,
		Connect: func(_ context.Context, _ *Descriptor) (string, error) {
			return "client", nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if h.State() != StateConnecting {
		t.Errorf("initial State() = %v, want %v", h.State(), StateConnecting)
	}

	h.Start(context.Background())

	// Use blocks until the connecting loop settles.
	client, ok := h.Use(context.Background())
	if !ok {
		t.Fatal("Use() = not-ok, want ok after successful connect")
	}
	if client != "client" {
		t.Errorf("Use() client = %q, want %q", client, "client")
	}
	if h.State() != StateAvailable {
		t.Errorf("State() = %v, want %v", h.State(), StateAvailable)
	}
}

func TestHandle_RetryCeilingExhaustion(t *testing.T) {
	var attempts atomic.Int32
	h, err := New(Options[int]{
		Name:       "queue",
		Descriptor: testDescriptor(),
		Logger:     logging.Default(),
		Retry:      fastPolicy,
		Connect: func(_ context.Context, _ *Descriptor) (int, error) {
			attempts.Add(1)
			return 0, errors.New("connection refused")
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	h.Start(context.Background())
	waitForState(t, h, StateUnavailable)

	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want exactly 3", got)
	}

	// No further attempt occurs after demotion, even with elapsed time.
	time.Sleep(50 * time.Millisecond)
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts after settling = %d, want 3 (no retry after ceiling)", got)
	}

	if _, ok := h.Use(context.Background()); ok {
		t.Error("Use() = ok, want not-ok after exhaustion")
	}
	if h.LastError() == nil {
		t.Error("LastError() = nil, want retry ceiling error")
	}
}

func TestHandle_RuntimeDemotion(t *testing.T) {
	closed := make(chan string, 1)
	h, err := New(Options[string]{
		Name:       "events",
		Descriptor: testDescriptor(),
		Logger:     logging.Default(),
		Retry:      fastPolicy,
		Connect: func(_ context.Context, _ *Descriptor) (string, error) {
			return "client", nil
		},
		Close: func(c string) { closed <- c },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	h.Start(context.Background())
	waitForState(t, h, StateAvailable)

	callErr := errors.New("broken pipe")
	h.Demote(callErr)

	if h.State() != StateUnavailable {
		t.Errorf("State() = %v, want %v", h.State(), StateUnavailable)
	}
	if !errors.Is(h.LastError(), callErr) {
		t.Errorf("LastError() = %v, want %v", h.LastError(), callErr)
	}

	// Second demotion is a no-op (single transition).
	h.Demote(errors.New("again"))
	if !errors.Is(h.LastError(), callErr) {
		t.Error("second Demote should not overwrite the recorded error")
	}
}

func TestHandle_TransitionObserver(t *testing.T) {
	transitions := make(chan Transition, 4)
	h, err := New(Options[string]{
		Name:       "cache",
		Descriptor: testDescriptor(),
		Logger:     logging.Default(),
		Retry:      fastPolicy,
		Connect: func(_ context.Context, _ *Descriptor) (string, error) {
			return "client", nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.OnTransition(func(tr Transition) { transitions <- tr })

	h.Start(context.Background())
	waitForState(t, h, StateAvailable)
	h.Demote(errors.New("blip"))

	first := <-transitions
	if first.Dependency != "cache" || first.From != StateConnecting || first.To != StateAvailable {
		t.Errorf("first transition = %+v, want connecting→available", first)
	}
	second := <-transitions
	if second.From != StateAvailable || second.To != StateUnavailable || second.Err == nil {
		t.Errorf("second transition = %+v, want available→unavailable with error", second)
	}
}

func TestHandle_UseTimeoutWhileConnecting(t *testing.T) {
	release := make(chan struct{})
	h, err := New(Options[string]{
		Name:       "slow",
		Descriptor: testDescriptor(),
		Logger:     logging.Default(),
		Retry:      Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		Connect: func(ctx context.Context, _ *Descriptor) (string, error) {
			select {
			case <-release:
				return "client", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer close(release)

	h.Start(context.Background())

	// A caller with an expired context does not wait for the slow connect.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := h.Use(ctx); ok {
		t.Error("Use() = ok, want not-ok while still connecting")
	}
}

func TestHandle_CloseSuppressesTeardownDemotion(t *testing.T) {
	var (
		closed      atomic.Int32
		transitions atomic.Int32
	)
	h, err := New(Options[string]{
		Name:       "queue",
		Descriptor: testDescriptor(),
		Logger:     logging.Default(),
		Retry:      fastPolicy,
		Connect: func(_ context.Context, _ *Descriptor) (string, error) {
			return "client", nil
		},
		Close: func(_ string) {
			closed.Add(1)
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.OnTransition(func(Transition) { transitions.Add(1) })

	h.Start(context.Background())
	waitForState(t, h, StateAvailable)
	if got := transitions.Load(); got != 1 {
		t.Fatalf("transitions after connect = %d, want 1", got)
	}

	h.Close()
	// Simulate the client's closed callback arriving during teardown.
	h.Demote(errors.New("connection closed"))

	if got := transitions.Load(); got != 1 {
		t.Errorf("transitions after graceful close = %d, want 1 (no spurious demotion)", got)
	}
	if got := closed.Load(); got != 1 {
		t.Errorf("close function calls = %d, want 1", got)
	}

	// A second Close must not re-run the close function.
	h.Close()
	if got := closed.Load(); got != 1 {
		t.Errorf("close function calls after second Close = %d, want 1", got)
	}
}
