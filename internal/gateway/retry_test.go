package gateway

import (
	"testing"
	"time"
)

func TestPolicy_Delay_LinearWithCap(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 5 * time.Second}

	tests := []struct {
		n    int
		want time.Duration
	}{
		{0, 0},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 5 * time.Second}, // capped
		{10, 5 * time.Second},
	}

	for _, tt := range tests {
		if got := p.Delay(tt.n); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestPolicy_Attempts_Floor(t *testing.T) {
	if got := (Policy{}).attempts(); got != 1 {
		t.Errorf("zero policy attempts() = %d, want 1", got)
	}
	if got := DefaultPolicy.attempts(); got != 3 {
		t.Errorf("DefaultPolicy.attempts() = %d, want 3", got)
	}
}
