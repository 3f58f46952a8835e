package health

import (
	"context"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
)

// Status is the overall service health.
type Status string

const (
	// StatusHealthy means the core datastore and all configured optional
	// dependencies are available.
	StatusHealthy Status = "healthy"

	// StatusDegraded means the core request path works but at least one
	// configured optional dependency is not available.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means the core datastore itself is failing; the
	// service cannot do meaningful work.
	StatusUnhealthy Status = "unhealthy"
)

// Component is the reported state of a single dependency.
type Component struct {
	State     string `json:"state"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// Snapshot is a point-in-time aggregation of service health. It is
// recomputed on every request and never cached.
type Snapshot struct {
	Status     Status               `json:"status"`
	Components map[string]Component `json:"components"`
}

// Pinger is the core-datastore probe.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Aggregator builds Snapshots from the core datastore and the guarded
// dependency handles.
type Aggregator struct {
	core Pinger
	deps []gateway.Reporter
}

// NewAggregator creates an Aggregator over the core datastore probe and
// any number of guarded dependencies.
func NewAggregator(core Pinger, deps ...gateway.Reporter) *Aggregator {
	return &Aggregator{core: core, deps: deps}
}

// Snapshot computes the current composite health.
//
// Rules:
//   - core ping failure → unhealthy
//   - any configured dependency not Available → degraded
//   - otherwise → healthy
//
// Unconfigured dependencies are listed in the breakdown but never count
// against the status: absence is a supported operating mode, not a fault.
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		Status:     StatusHealthy,
		Components: make(map[string]Component, len(a.deps)+1),
	}

	coreComponent := Component{State: "available", Connected: true}
	if err := a.core.HealthCheck(ctx); err != nil {
		snap.Status = StatusUnhealthy
		coreComponent = Component{State: "unavailable", Connected: false, Error: err.Error()}
	}
	snap.Components["database"] = coreComponent

	for _, dep := range a.deps {
		state := dep.State()
		component := Component{
			State:     state.String(),
			Connected: state == gateway.StateAvailable,
		}
		if err := dep.LastError(); err != nil && state == gateway.StateUnavailable {
			component.Error = err.Error()
		}
		snap.Components[dep.Name()] = component

		configured := state != gateway.StateUnconfigured
		if configured && state != gateway.StateAvailable && snap.Status == StatusHealthy {
			snap.Status = StatusDegraded
		}
	}

	return snap
}
