// Package nats provides the guarded background-job queue for Vitrine.
//
// Jobs are published to NATS subjects under a configurable prefix
// (default "vitrine.jobs"). The queue is an optional dependency: with no
// connection settings, or after the broker becomes unreachable, Enqueue
// no-ops rather than erroring or buffering. Client-side reconnect is
// disabled so a lost connection demotes the handle and fails fast instead
// of queueing messages in memory unboundedly.
package nats
