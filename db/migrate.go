package db

import (
	"database/sql"
	"embed"
	"path"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/specgraph/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// migration is one embedded schema change. Its version is the numeric
// file name prefix; 000 creates the bookkeeping table itself.
type migration struct {
	version string
	file    string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var out []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, errors.Newf("migration %s has no version prefix", name)
		}
		out = append(out, migration{version: version, file: name})
	}
	slices.SortFunc(out, func(a, b migration) int { return strings.Compare(a.version, b.version) })
	return out, nil
}

// appliedVersions returns the recorded versions; a database without the
// bookkeeping table has none.
func appliedVersions(conn *sql.DB) (map[string]bool, error) {
	var n int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'").Scan(&n)
	if err != nil {
		return nil, Classify(errors.Wrap(err, "inspect schema"))
	}
	applied := make(map[string]bool)
	if n == 0 {
		return applied, nil
	}
	rows, err := conn.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, Classify(errors.Wrap(err, "list applied migrations"))
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan migration version")
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// Migrate applies the pending embedded migrations, each in its own
// transaction. A nil logger runs silently.
func Migrate(conn *sql.DB, logger *zap.SugaredLogger) error {
	all, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(conn)
	if err != nil {
		return err
	}

	pending := 0
	for _, m := range all {
		if applied[m.version] {
			continue
		}
		if len(applied) == 0 && m.version != "000" && pending == 0 {
			return errors.Newf("schema_migrations table missing, but migration is not 000: %s", m.file)
		}
		if logger != nil {
			logger.Infow("Applying migration", "migration", m.file, "version", m.version)
		}
		if err := apply(conn, m); err != nil {
			return err
		}
		pending++
	}

	if logger != nil && pending > 0 {
		logger.Infow("Migrations complete", "applied", pending, "total_migrations", len(all))
	}
	return nil
}

func apply(conn *sql.DB, m migration) error {
	body, err := migrations.ReadFile(path.Join(migrationsDir, m.file))
	if err != nil {
		return errors.Wrapf(err, "read %s", m.file)
	}

	tx, err := conn.Begin()
	if err != nil {
		return Classify(errors.Wrapf(err, "begin tx for %s", m.file))
	}
	if _, err := tx.Exec(string(body)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", m.file)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", m.file)
	}
	if err := tx.Commit(); err != nil {
		return Classify(errors.Wrapf(err, "commit %s", m.file))
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, or "" for a
// database that was never migrated.
func SchemaVersion(conn *sql.DB) (string, error) {
	applied, err := appliedVersions(conn)
	if err != nil {
		return "", err
	}
	latest := ""
	for v := range applied {
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}
