// Package gateway implements the guarded-handle pattern Vitrine uses for
// every optional external dependency (cache, queue, event broker,
// time-series sink).
//
// A Handle wraps a lazily-connected client behind a four-state lifecycle:
//
//	Unconfigured → no connection settings were provided; permanent
//	Connecting   → a bounded retry loop is attempting to connect
//	Available    → bound to a live client
//	Unavailable  → attempts exhausted, or a runtime error demoted it; permanent
//
// The states Unconfigured and Unavailable are terminal for the process
// lifetime: there is no automatic re-promotion after the retry ceiling is
// reached. A restart is required to retry. This keeps failure behaviour
// predictable and avoids reconnect storms against a dead dependency.
//
// Call sites never see a connection error. They obtain the client through
// Use, which reports whether the dependency is usable, and demote the handle
// with Demote when a runtime call fails:
//
//	client, ok := handle.Use(ctx)
//	if !ok {
//	    return nil // neutral default, dependency degraded
//	}
//	if err := client.Do(...); err != nil {
//	    handle.Demote(err)
//	    return nil
//	}
//
// Each state transition is logged exactly once, exported as a Prometheus
// gauge, and fanned out to registered observers (WebSocket broadcast,
// InfluxDB history sink).
//
// Thread Safety: all Handle methods are safe for concurrent use.
package gateway
