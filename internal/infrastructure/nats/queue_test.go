package nats

import (
	"context"
	"testing"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

func TestUnconfiguredQueue_EnqueueNoOps(t *testing.T) {
	q, err := New(config.NATSConfig{}, logging.Default(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	q.Start(context.Background())
	defer q.Close()

	id, queued := q.Enqueue(context.Background(), "note.index", []byte(`{}`))
	if queued {
		t.Error("Enqueue() queued = true, want false for unconfigured queue")
	}
	if id != "" {
		t.Errorf("Enqueue() id = %q, want empty", id)
	}
	if got := q.Reporter().State(); got != gateway.StateUnconfigured {
		t.Errorf("State() = %v, want %v", got, gateway.StateUnconfigured)
	}
}

func TestSubject_UsesPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"default prefix", "", "vitrine.jobs.note.index"},
		{"custom prefix", "showcase.work", "showcase.work.note.index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New(config.NATSConfig{SubjectPrefix: tt.prefix}, logging.Default(), nil)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := q.Subject("note.index"); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}
