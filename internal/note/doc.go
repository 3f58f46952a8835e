// Package note implements the showcase domain entity.
//
// Notes are deliberately simple records; their purpose is to exercise every
// integration in one realistic flow. A create writes to SQLite (the core
// path), primes the cache, enqueues an indexing job, and publishes a
// lifecycle event. Reads go cache-aside: cache hit, else SQLite plus a
// cache refresh. Every optional-dependency interaction degrades silently
// when that dependency is down; only SQLite errors surface to callers.
package note
