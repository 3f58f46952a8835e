package health

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
)

// fakePinger simulates the core datastore probe.
type fakePinger struct {
	err error
}

func (p fakePinger) HealthCheck(context.Context) error { return p.err }

// fakeReporter simulates a guarded handle.
type fakeReporter struct {
	name  string
	state gateway.State
	err   error
}

func (r fakeReporter) Name() string         { return r.name }
func (r fakeReporter) State() gateway.State { return r.state }
func (r fakeReporter) LastError() error     { return r.err }

func TestSnapshot_AllAvailable(t *testing.T) {
	agg := NewAggregator(fakePinger{},
		fakeReporter{name: "redis", state: gateway.StateAvailable},
		fakeReporter{name: "nats", state: gateway.StateAvailable},
	)

	snap := agg.Snapshot(context.Background())
	if snap.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v", snap.Status, StatusHealthy)
	}
	if !snap.Components["redis"].Connected {
		t.Error("redis Connected = false, want true")
	}
}

func TestSnapshot_UnconfiguredDoesNotDegrade(t *testing.T) {
	agg := NewAggregator(fakePinger{},
		fakeReporter{name: "redis", state: gateway.StateUnconfigured},
		fakeReporter{name: "mqtt", state: gateway.StateUnconfigured},
	)

	snap := agg.Snapshot(context.Background())
	if snap.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v (absence is not a fault)", snap.Status, StatusHealthy)
	}
	if c := snap.Components["redis"]; c.Connected || c.State != "unconfigured" {
		t.Errorf("redis component = %+v", c)
	}
}

func TestSnapshot_UnavailableDegrades(t *testing.T) {
	demotionErr := errors.New("retry ceiling reached after 3 attempts: connection refused")
	agg := NewAggregator(fakePinger{},
		fakeReporter{name: "redis", state: gateway.StateUnavailable, err: demotionErr},
		fakeReporter{name: "nats", state: gateway.StateAvailable},
	)

	snap := agg.Snapshot(context.Background())
	if snap.Status != StatusDegraded {
		t.Errorf("Status = %v, want %v", snap.Status, StatusDegraded)
	}
	if c := snap.Components["redis"]; c.Error == "" {
		t.Error("redis component should carry the demotion error")
	}
}

func TestSnapshot_CoreFailureIsUnhealthy(t *testing.T) {
	agg := NewAggregator(fakePinger{err: errors.New("database is locked")},
		fakeReporter{name: "redis", state: gateway.StateAvailable},
	)

	snap := agg.Snapshot(context.Background())
	if snap.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", snap.Status, StatusUnhealthy)
	}
	if snap.Components["database"].Connected {
		t.Error("database Connected = true, want false")
	}
}

func TestSnapshot_DeterministicSerialisation(t *testing.T) {
	// Repeated snapshots with unchanged state must serialise identically;
	// orchestration diffs health output.
	agg := NewAggregator(fakePinger{},
		fakeReporter{name: "redis", state: gateway.StateAvailable},
		fakeReporter{name: "nats", state: gateway.StateUnavailable, err: errors.New("gone")},
		fakeReporter{name: "mqtt", state: gateway.StateUnconfigured},
	)

	first, err := json.Marshal(agg.Snapshot(context.Background()))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := json.Marshal(agg.Snapshot(context.Background()))
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if string(next) != string(first) {
			t.Fatalf("snapshot %d differs:\n%s\n%s", i, first, next)
		}
	}
}
