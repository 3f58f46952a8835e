package redis

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

// newUnconfiguredCache builds a cache with no connection settings at all.
func newUnconfiguredCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := New(config.RedisConfig{}, logging.Default(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return cache
}

func TestUnconfiguredCache_AllOperationsNoOp(t *testing.T) {
	cache := newUnconfiguredCache(t)
	cache.Start(context.Background())
	defer cache.Close()

	ctx := context.Background()

	// Startup must complete and a store must succeed with no side effect.
	if stored := cache.Store(ctx, "x", []byte("{}"), 0); stored {
		t.Error("Store() = true, want false (no live cache)")
	}
	if value, ok := cache.Fetch(ctx, "x"); ok || value != nil {
		t.Errorf("Fetch() = (%v, %v), want (nil, false)", value, ok)
	}
	if cache.Exists(ctx, "x") {
		t.Error("Exists() = true, want false")
	}
	if cache.Delete(ctx, "x") {
		t.Error("Delete() = true, want false")
	}

	if got := cache.Reporter().State(); got != gateway.StateUnconfigured {
		t.Errorf("State() = %v, want %v", got, gateway.StateUnconfigured)
	}
}

func TestNew_DescriptorResolution(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.RedisConfig
		wantState gateway.State
	}{
		{
			name:      "empty config is unconfigured",
			cfg:       config.RedisConfig{Port: 6379},
			wantState: gateway.StateUnconfigured,
		},
		{
			name:      "url form is configured",
			cfg:       config.RedisConfig{URL: "redis://localhost:6379"},
			wantState: gateway.StateConnecting,
		},
		{
			name:      "discrete fields are configured",
			cfg:       config.RedisConfig{Host: "localhost", Port: 6379},
			wantState: gateway.StateConnecting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := New(tt.cfg, logging.Default(), nil)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			// State before Start: unconfigured handles are settled,
			// configured ones are pending in Connecting.
			if got := cache.Reporter().State(); got != tt.wantState {
				t.Errorf("State() = %v, want %v", got, tt.wantState)
			}
		})
	}
}

// waitForState polls until the reporter reaches want or the deadline expires.
func waitForState(t *testing.T, r gateway.Reporter, want gateway.State) {
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

// TestCache_RoundTrip drives Store and Fetch through a live handle: a JSON
// document stored under a key must come back deep-equal.
func TestCache_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)

	cache, err := New(config.RedisConfig{URL: "redis://" + srv.Addr()}, logging.Default(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cache.Start(context.Background())
	defer cache.Close()

	ctx := context.Background()
	waitForState(t, cache.Reporter(), gateway.StateAvailable)

	want := map[string]any{"a": float64(1)}
	value, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshalling value: %v", err)
	}

	if !cache.Store(ctx, "k1", value, 0) {
		t.Fatal("Store() = false, want true on a live cache")
	}

	raw, ok := cache.Fetch(ctx, "k1")
	if !ok {
		t.Fatal("Fetch() = miss, want hit")
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshalling fetched value: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fetch() = %v, want %v", got, want)
	}

	if !cache.Exists(ctx, "k1") {
		t.Error("Exists() = false, want true after store")
	}
	if !cache.Delete(ctx, "k1") {
		t.Error("Delete() = false, want true on a live cache")
	}
	if _, ok := cache.Fetch(ctx, "k1"); ok {
		t.Error("Fetch() after delete = hit, want miss")
	}
}

// TestCache_RuntimeFailureDemotes kills the backend under an Available
// handle: the failing call must demote once and every later operation must
// return the neutral default.
func TestCache_RuntimeFailureDemotes(t *testing.T) {
	srv := miniredis.RunT(t)

	cache, err := New(config.RedisConfig{URL: "redis://" + srv.Addr()}, logging.Default(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cache.Start(context.Background())
	defer cache.Close()

	ctx := context.Background()
	waitForState(t, cache.Reporter(), gateway.StateAvailable)

	if !cache.Store(ctx, "k1", []byte(`{"a":1}`), 0) {
		t.Fatal("Store() = false before backend loss, want true")
	}

	srv.Close()

	if cache.Store(ctx, "k1", []byte(`{"a":1}`), 0) {
		t.Error("Store() = true after backend loss, want false")
	}
	waitForState(t, cache.Reporter(), gateway.StateUnavailable)

	// Demoted cache: all reads are plain misses, no error surfaces.
	if _, ok := cache.Fetch(ctx, "k1"); ok {
		t.Error("Fetch() on demoted cache = hit, want miss")
	}
	if cache.Exists(ctx, "k1") {
		t.Error("Exists() on demoted cache = true, want false")
	}
	if err := cache.Reporter().LastError(); err == nil {
		t.Error("LastError() = nil after demotion, want the runtime failure")
	}
}
