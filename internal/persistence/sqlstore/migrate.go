package sqlstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations
var migrationFiles embed.FS

var (
	// ErrInvalidMigrationFile indicates a migration file name or body is malformed.
	ErrInvalidMigrationFile = errors.New("invalid migration file format")
	// ErrDuplicateVersion indicates two migrations share a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")
)

// migrationFilePattern matches {version}_{description}.sql.
var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Migration is one embedded schema change.
type Migration struct {
	Version     string
	Description string
	FilePath    string
	SQL         string
}

// MigrationError wraps a migration failure with its context.
type MigrationError struct {
	Version   string
	FilePath  string
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.FilePath, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration error (%s): %s: %v", e.FilePath, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// Migrate applies every pending migration for the store's dialect, one
// transaction per file, recording each version in schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	migrations, err := loadMigrations(migrationFiles, path.Join("migrations", string(s.dialect)))
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, versionTableDDL(s.dialect)); err != nil {
		return &MigrationError{Operation: "create schema_migrations table", Err: err}
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		start := time.Now()
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "migration applied",
			"version", m.Version,
			"description", m.Description,
			"duration", time.Since(start),
		)
	}
	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, &MigrationError{Operation: "get applied versions", Err: err}
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, &MigrationError{Operation: "scan applied version", Err: err}
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, &MigrationError{Operation: "iterate applied versions", Err: err}
	}
	return applied, nil
}

func (s *Store) applyMigration(ctx context.Context, m Migration) (err error) {
	statements := splitStatements(m.SQL)
	if len(statements) == 0 {
		return &MigrationError{Version: m.Version, FilePath: m.FilePath, Operation: "parse SQL", Err: ErrInvalidMigrationFile}
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &MigrationError{Version: m.Version, FilePath: m.FilePath, Operation: "begin transaction", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			err = &MigrationError{Version: m.Version, FilePath: m.FilePath, Operation: fmt.Sprintf("execute statement %d", i+1), Err: execErr}
			return err
		}
	}

	if _, execErr := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at, execution_time_ms) VALUES (?, ?, ?)`,
		m.Version, formatTimestamp(time.Now()), time.Since(start).Milliseconds(),
	); execErr != nil {
		err = &MigrationError{Version: m.Version, FilePath: m.FilePath, Operation: "record migration", Err: execErr}
		return err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		err = &MigrationError{Version: m.Version, FilePath: m.FilePath, Operation: "commit transaction", Err: commitErr}
		return err
	}
	return nil
}

func versionTableDDL(d Dialect) string {
	if d == DialectMySQL {
		return `CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(32) NOT NULL PRIMARY KEY,
			applied_at VARCHAR(40) NOT NULL,
			execution_time_ms BIGINT
		)`
	}
	return `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL,
		execution_time_ms INTEGER
	)`
}

// loadMigrations reads dir from fsys, validates file names and returns the
// migrations ordered by numeric version.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, &MigrationError{FilePath: dir, Operation: "read directory", Err: err}
	}

	var migrations []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			return nil, &MigrationError{FilePath: entry.Name(), Operation: "validate filename",
				Err: fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, entry.Name())}
		}
		version := matches[1]
		if other, ok := seen[version]; ok {
			return nil, &MigrationError{Version: version, FilePath: entry.Name(), Operation: "check duplicates",
				Err: fmt.Errorf("%w: %s and %s", ErrDuplicateVersion, other, entry.Name())}
		}
		seen[version] = entry.Name()

		filePath := path.Join(dir, entry.Name())
		body, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, &MigrationError{Version: version, FilePath: filePath, Operation: "read file", Err: err}
		}
		migrations = append(migrations, Migration{
			Version:     version,
			Description: matches[2],
			FilePath:    filePath,
			SQL:         string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})
	return migrations, nil
}

// splitStatements splits a script on semicolons and drops comment-only lines.
func splitStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
