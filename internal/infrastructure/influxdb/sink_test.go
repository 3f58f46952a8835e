package influxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

func TestUnconfiguredSink_RecordsDropSilently(t *testing.T) {
	sink, err := New(config.InfluxDBConfig{}, logging.Default(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sink.Start(context.Background())
	defer sink.Close()

	if got := sink.Reporter().State(); got != gateway.StateUnconfigured {
		t.Fatalf("State() = %v, want %v", got, gateway.StateUnconfigured)
	}

	// Must not panic or block.
	sink.RecordTransition(gateway.Transition{
		Dependency: "redis",
		From:       gateway.StateAvailable,
		To:         gateway.StateUnavailable,
		Err:        errors.New("broken pipe"),
		At:         time.Now(),
	})
	sink.RecordHTTPRequest("GET", "/api/v1/health", 200, 3*time.Millisecond)
}
