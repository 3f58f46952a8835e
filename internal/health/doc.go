// Package health computes the composite health signal for Vitrine.
//
// Three HTTP surfaces map onto it:
//
//   - liveness: always OK once the process serves requests; never consults
//     dependency state
//   - readiness: OK once startup completed; optional dependencies do not
//     gate readiness by product decision
//   - health: a full snapshot with an overall status and a per-dependency
//     breakdown
//
// The overall status is "unhealthy" only when the core datastore fails its
// ping; optional dependencies at worst degrade it. Because demoted handles
// never re-promote within a process lifetime, "degraded" is sticky until
// restart, matching the gateway contract.
package health
