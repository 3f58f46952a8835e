// Package influxdb provides the guarded time-series sink for Vitrine.
//
// The sink records dependency state transitions as points in an InfluxDB
// bucket, giving operators a queryable history of degradation events. It is
// itself an optional dependency behind the same guarded handle as the
// cache, queue, and event broker: when unconfigured or unavailable,
// transition records are dropped silently.
//
// Writes are non-blocking and batched by the InfluxDB client; async write
// errors are logged but do not demote the handle (a single failed batch is
// not evidence the sink is gone, and the next ping-verified write settles
// the question).
package influxdb
