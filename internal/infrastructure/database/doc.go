// Package database provides SQLite connectivity for Vitrine.
//
// The database is the one mandatory dependency: unlike the cache, queue,
// and event broker, a failure here is surfaced to callers as a request
// error rather than absorbed, because there is no meaningful degraded
// behaviour without the primary datastore.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Embedded schema migrations, applied in version order
//   - Health checks used by the composite health endpoint
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
