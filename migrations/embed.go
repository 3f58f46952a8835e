// Package migrations embeds SQL migration files into the binary, so Vitrine
// runs its schema migrations without needing the files on disk.
package migrations

import (
	"embed"

	"github.com/vitrinedev/vitrine-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // files are at the root of the embedded FS
}
