package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migration is one versioned schema change. Files are named NNNN_name_up.sql and NNNN_name_down.sql.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// loadMigrations reads the embedded migration pairs, ordered by version.
func loadMigrations() ([]Migration, error) {
	names, err := fs.Glob(migrationFiles, "sql/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, path := range names {
		file := strings.TrimPrefix(path, "sql/")
		prefix, rest, ok := strings.Cut(file, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		content, err := migrationFiles.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		switch {
		case strings.HasSuffix(rest, "_up.sql"):
			m.Name = strings.TrimSuffix(rest, "_up.sql")
			m.Up = string(content)
		case strings.HasSuffix(rest, "_down.sql"):
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("incomplete migration for version %d", m.Version)
		}
		migrations = append(migrations, *m)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })
	return migrations, nil
}

// RunMigrations applies every migration not yet recorded in schema_migrations.
func RunMigrations(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		record := func(tx *sql.Tx) error {
			_, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version)
			return err
		}
		if err := execMigration(db, m.Up, record); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// RollbackMigration reverts the most recently applied migration and returns it.
// It returns [ErrNotFound] when nothing has been applied.
func RollbackMigration(db *sql.DB) (Migration, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return Migration{}, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := createMigrationsTable(db); err != nil {
		return Migration{}, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&current); err != nil {
		return Migration{}, fmt.Errorf("failed to get current version: %w", err)
	}
	if !current.Valid {
		return Migration{}, fmt.Errorf("%w: no applied migrations", ErrNotFound)
	}

	i := slices.IndexFunc(migrations, func(m Migration) bool { return int64(m.Version) == current.Int64 })
	if i < 0 {
		return Migration{}, fmt.Errorf("migration version %d not found", current.Int64)
	}
	m := migrations[i]
	forget := func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", m.Version)
		return err
	}
	if err := execMigration(db, m.Down, forget); err != nil {
		return Migration{}, fmt.Errorf("failed to rollback migration %d: %w", m.Version, err)
	}
	return m, nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// execMigration runs each statement of script and then bookkeep inside one transaction.
func execMigration(db *sql.DB, script string, bookkeep func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for stmt := range strings.SplitSeq(script, ";") {
		stmt = strings.TrimSpace(removeComments(stmt))
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}
	if err := bookkeep(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// removeComments strips "--" comments and blank lines.
func removeComments(sql string) string {
	var kept []string
	for line := range strings.SplitSeq(sql, "\n") {
		if before, _, found := strings.Cut(line, "--"); found {
			line = before
		}
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
