package gateway

import "time"

// Policy governs the bounded connection retry loop.
//
// Backoff is linear with a cap: the delay before retry n (counting the
// first retry as 1) is min(n*BaseDelay, MaxDelay). The first attempt is
// made immediately. After MaxAttempts failed attempts the handle is
// permanently demoted; there is no further retry within the process
// lifetime.
type Policy struct {
	// MaxAttempts is the retry ceiling. Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the linear backoff increment.
	BaseDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// DefaultPolicy is the retry policy applied to every optional dependency.
// One consistent policy across all handles, on purpose.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    10 * time.Second,
}

// attempts returns the effective retry ceiling.
func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the backoff before retry n (n >= 1).
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	d := time.Duration(n) * p.BaseDelay
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
