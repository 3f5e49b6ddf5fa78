package sqlite

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// applyMigrations применяет по порядку миграции, которых ещё нет в базе.
// Номер последней применённой хранится в PRAGMA user_version.
func applyMigrations(db *sqlx.DB) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	var version int
	if err := db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for i := version; i < len(names); i++ {
		ddl, err := migrationsFS.ReadFile(names[i])
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(ddl)); err != nil {
			return fmt.Errorf("apply %s: %w", names[i], err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("bump schema version: %w", err)
		}
	}
	return nil
}
