package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("VITRINE_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("VITRINE_CONFIG", "/etc/vitrine/config.yaml")
	if got := getConfigPath(); got != "/etc/vitrine/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}
}

// TestRun_BootAndShutdown boots the full service against a temp database
// with no optional integrations configured, then cancels the context and
// expects a clean shutdown.
func TestRun_BootAndShutdown(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	cfg := `
service:
  name: vitrine
  environment: test
database:
  path: ` + filepath.Join(dir, "vitrine.db") + `
  wal_mode: true
  busy_timeout: 5
api:
  host: 127.0.0.1
  port: 18947
logging:
  level: error
  format: json
`
	if err := os.WriteFile(configPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	t.Setenv("VITRINE_CONFIG", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	// Let the service finish initialising, then signal shutdown.
	time.Sleep(500 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v, want clean shutdown", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not shut down after context cancellation")
	}
}
