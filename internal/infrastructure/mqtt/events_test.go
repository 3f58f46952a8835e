package mqtt

import (
	"context"
	"strings"
	"testing"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

func TestUnconfiguredEvents_PublishSubscribeNoOp(t *testing.T) {
	events, err := New(config.MQTTConfig{ClientID: "test", QoS: 1}, logging.Default(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	events.Start(context.Background())
	defer events.Close()

	ctx := context.Background()
	if events.Publish(ctx, events.Topics().NoteEvent("created"), []byte(`{}`)) {
		t.Error("Publish() = true, want false for unconfigured broker")
	}
	if events.Subscribe(ctx, "vitrine/#", func(string, []byte) error { return nil }) {
		t.Error("Subscribe() = true, want false for unconfigured broker")
	}
	if got := events.Reporter().State(); got != gateway.StateUnconfigured {
		t.Errorf("State() = %v, want %v", got, gateway.StateUnconfigured)
	}
}

func TestTopics(t *testing.T) {
	var topics Topics

	if got := topics.SystemStatus(); got != "vitrine/system/status" {
		t.Errorf("SystemStatus() = %q", got)
	}
	if got := topics.NoteEvent("created"); got != "vitrine/events/notes/created" {
		t.Errorf("NoteEvent() = %q", got)
	}
	if got := topics.Event("demo"); got != "vitrine/events/demo" {
		t.Errorf("Event() = %q", got)
	}

	tests := []struct {
		topic string
		want  bool
	}{
		{"vitrine/events/demo", true},
		{"vitrine", true},
		{"vitrineX/events", false},
		{"other/topic", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := topics.InNamespace(tt.topic); got != tt.want {
			t.Errorf("InNamespace(%q) = %v, want %v", tt.topic, got, tt.want)
		}
	}
}

func TestStatusPayload(t *testing.T) {
	online := statusPayload("vitrine-core", "online", "")
	if want := `"status":"online"`; !strings.Contains(online, want) {
		t.Errorf("statusPayload online = %s, missing %s", online, want)
	}
	offline := statusPayload("vitrine-core", "offline", "graceful_shutdown")
	if want := `"reason":"graceful_shutdown"`; !strings.Contains(offline, want) {
		t.Errorf("statusPayload offline = %s, missing %s", offline, want)
	}
}
