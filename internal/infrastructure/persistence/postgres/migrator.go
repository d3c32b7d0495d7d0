// internal/infrastructure/persistence/postgres/migrator.go
package postgres

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"subscription-group-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrator управляет миграциями базы данных
type Migrator struct {
	db         *sqlx.DB
	migrations []*Migration
}

// Migration представляет одну миграцию
type Migration struct {
	ID          int
	Name        string
	Description string
	SQL         string
	Checksum    string
}

// NewMigrator создает мигратор со встроенными миграциями
func NewMigrator(db *sqlx.DB) (*Migrator, error) {
	return NewMigratorFS(db, embeddedMigrations, "migrations")
}

// NewMigratorFS создает мигратор, читающий миграции из произвольной файловой системы
func NewMigratorFS(db *sqlx.DB, fsys fs.FS, dir string) (*Migrator, error) {
	migrations, err := loadMigrations(fsys, dir)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: migrations}, nil
}

// Migrations возвращает загруженные миграции по порядку
func (m *Migrator) Migrations() []*Migration {
	return m.migrations
}

// Init инициализирует таблицу миграций
func (m *Migrator) Init(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		checksum VARCHAR(64) NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// Migrate применяет все непройденные миграции
func (m *Migrator) Migrate(ctx context.Context) error {
	logger.Info("🚀 Starting database migrations...")

	if err := m.Init(ctx); err != nil {
		return err
	}

	applied, err := m.appliedChecksums(ctx)
	if err != nil {
		return err
	}

	var appliedCount int
	for _, migration := range m.migrations {
		if checksum, ok := applied[migration.ID]; ok {
			if checksum != migration.Checksum {
				return fmt.Errorf("checksum mismatch for migration %d: %s", migration.ID, migration.Name)
			}
			logger.Debug("✅ Migration already applied: %s", migration.Name)
			continue
		}

		if err := m.applyMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %s: %w", migration.ID, migration.Name, err)
		}
		appliedCount++
	}

	if appliedCount > 0 {
		logger.Info("✅ Applied %d new migrations", appliedCount)
	} else {
		logger.Info("✅ Database is up to date")
	}
	return nil
}

func (m *Migrator) appliedChecksums(ctx context.Context) (map[int]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, checksum FROM schema_migrations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]string)
	for rows.Next() {
		var id int
		var checksum string
		if err := rows.Scan(&id, &checksum); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied[id] = checksum
	}
	return applied, rows.Err()
}

func (m *Migrator) applyMigration(ctx context.Context, migration *Migration) error {
	logger.Info("📤 Applying migration: %s", migration.Name)

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (id, name, checksum) VALUES ($1, $2, $3)`,
		migration.ID, migration.Name, migration.Checksum,
	); err != nil {
		return fmt.Errorf("failed to save migration record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	logger.Info("✅ Applied migration: %s", migration.Name)
	return nil
}

// Вспомогательные функции

func loadMigrations(fsys fs.FS, dir string) ([]*Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []*Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		id, name, err := parseMigrationFilename(entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate migration ID %d: %s and %s", id, prev, entry.Name())
		}
		seen[id] = entry.Name()

		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file: %w", err)
		}

		migrations = append(migrations, &Migration{
			ID:          id,
			Name:        name,
			Description: extractDescription(string(content)),
			SQL:         string(content),
			Checksum:    calculateChecksum(string(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].ID < migrations[j].ID })
	return migrations, nil
}

func parseMigrationFilename(filename string) (int, string, error) {
	base := strings.TrimSuffix(filename, ".sql")

	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid migration filename format: %s (expected: 001_name.sql)", filename)
	}

	var id int
	if _, err := fmt.Sscanf(parts[0], "%d", &id); err != nil || id <= 0 {
		return 0, "", fmt.Errorf("invalid migration ID in filename: %s", filename)
	}

	return id, strings.ReplaceAll(parts[1], "_", " "), nil
}

func extractDescription(sql string) string {
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-- Description:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "-- Description:"))
		}
	}
	return "No description"
}

func calculateChecksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
