package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"quiz-pipeline/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsTable = "SCHEMA_MIGRATIONS"

// Migration is one versioned pair of up/down scripts.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// Migrator applies the embedded Oracle DDL in version order and records each
// applied version in SCHEMA_MIGRATIONS.
type Migrator struct {
	db         *sqlx.DB
	migrations []Migration
}

func NewMigrator(db *sqlx.DB) (*Migrator, error) {
	migrations, err := LoadMigrations(migrationFiles)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: migrations}, nil
}

// LoadMigrations pairs NNN_name.up.sql with NNN_name.down.sql under migrations/.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		name := entry.Name()
		var version, direction string
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			version, direction = strings.TrimSuffix(name, ".up.sql"), "up"
		case strings.HasSuffix(name, ".down.sql"):
			version, direction = strings.TrimSuffix(name, ".down.sql"), "down"
		default:
			continue
		}

		content, err := fs.ReadFile(fsys, "migrations/"+name)
		if err != nil {
			return nil, fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		if direction == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %s has no up script", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// SplitStatements splits a script on semicolons that end a line. Oracle
// rejects multiple statements per Exec and a trailing semicolon.
func SplitStatements(script string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			current.WriteString(strings.TrimSuffix(trimmed, ";"))
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}
		current.WriteString(trimmed)
		current.WriteString("\n")
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	var count int
	if err := m.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM user_tables WHERE table_name = :1`, migrationsTable); err != nil {
		return fmt.Errorf("could not inspect %s: %w", migrationsTable, err)
	}
	if count > 0 {
		return nil
	}
	_, err := m.db.ExecContext(ctx, `CREATE TABLE `+migrationsTable+` (
VERSION VARCHAR2(255) PRIMARY KEY,
APPLIED_AT TIMESTAMP NOT NULL)`)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", migrationsTable, err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	var versions []string
	if err := m.db.SelectContext(ctx, &versions, `SELECT VERSION FROM `+migrationsTable); err != nil {
		return nil, fmt.Errorf("could not list applied migrations: %w", err)
	}
	out := make(map[string]bool, len(versions))
	for _, v := range versions {
		out[v] = true
	}
	return out, nil
}

// Up applies every pending migration and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range m.migrations {
		if done[mig.Version] {
			continue
		}
		if err := m.exec(ctx, mig.Version, mig.Up); err != nil {
			return count, err
		}
		if _, err := m.db.ExecContext(ctx,
			`INSERT INTO `+migrationsTable+` (VERSION, APPLIED_AT) VALUES (:1, :2)`, mig.Version, time.Now()); err != nil {
			return count, fmt.Errorf("could not record migration %s: %w", mig.Version, err)
		}
		logger.Get().Info("Executed migration", zap.String("version", mig.Version))
		count++
	}
	return count, nil
}

// Down reverts the last `steps` applied migrations; steps <= 0 reverts all.
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := len(m.migrations) - 1; i >= 0; i-- {
		if steps > 0 && count >= steps {
			break
		}
		mig := m.migrations[i]
		if !done[mig.Version] {
			continue
		}
		if err := m.exec(ctx, mig.Version, mig.Down); err != nil {
			return count, err
		}
		if _, err := m.db.ExecContext(ctx,
			`DELETE FROM `+migrationsTable+` WHERE VERSION = :1`, mig.Version); err != nil {
			return count, fmt.Errorf("could not unrecord migration %s: %w", mig.Version, err)
		}
		logger.Get().Info("Reverted migration", zap.String("version", mig.Version))
		count++
	}
	return count, nil
}

func (m *Migrator) exec(ctx context.Context, version, script string) error {
	for _, stmt := range SplitStatements(script) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not execute migration %s: %w", version, err)
		}
	}
	return nil
}
