// Package mqtt provides the guarded event broker for Vitrine.
//
// Events (note lifecycle, system status) are published over MQTT topics
// under the "vitrine/" namespace. The broker is an optional dependency:
// with no connection settings, or after the broker becomes unreachable,
// Publish and Subscribe no-op rather than erroring.
//
// Paho's own auto-reconnect is disabled: the gateway package owns the
// bounded retry policy at startup, and a connection lost at runtime demotes
// the handle for the remainder of the process lifetime. This keeps the
// failure model identical across all optional dependencies.
package mqtt
