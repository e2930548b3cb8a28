package db

import (
	"cmp"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/medport/migrations"
	"gorm.io/gorm"
)

const migrationLedgerDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLite has no ADD COLUMN IF NOT EXISTS, so those statements are checked first.
var addColumnPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)

type embeddedMigration struct {
	Version    string
	Order      int
	Name       string
	Statements []string
}

type migrator struct {
	database *gorm.DB
	logger   *slog.Logger
}

// applyEmbeddedMigrations runs every numbered file under migrations/ that is
// not yet recorded in schema_migrations. Each file is one transaction.
func applyEmbeddedMigrations(database *gorm.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	m := migrator{database: database, logger: logger.With("component", "migrations")}
	return m.run()
}

func (m migrator) run() error {
	if err := m.database.Exec(migrationLedgerDDL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	pending, err := loadEmbeddedMigrations()
	if err != nil {
		return err
	}

	var applied []string
	if err := m.database.Table("schema_migrations").Pluck("version", &applied).Error; err != nil {
		return fmt.Errorf("load applied migration versions: %w", err)
	}

	for _, migration := range pending {
		if slices.Contains(applied, migration.Version) {
			continue
		}
		if err := m.apply(migration); err != nil {
			return err
		}
		m.logger.Info("applied migration", "version", migration.Version, "name", migration.Name)
	}
	return nil
}

func (m migrator) apply(migration embeddedMigration) error {
	if len(migration.Statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", migration.Name)
	}

	return m.database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range migration.Statements {
			if columnAlreadyAdded(tx, statement) {
				m.logger.Debug("column already present", "migration", migration.Name, "statement", statement)
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		record := map[string]any{"version": migration.Version, "name": migration.Name}
		if err := tx.Table("schema_migrations").Create(record).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

func columnAlreadyAdded(tx *gorm.DB, statement string) bool {
	matches := addColumnPattern.FindStringSubmatch(statement)
	if matches == nil {
		return false
	}
	return tx.Migrator().HasColumn(unquoteIdentifier(matches[1]), unquoteIdentifier(matches[2]))
}

// loadEmbeddedMigrations returns the NNN_name.sql files in version order.
func loadEmbeddedMigrations() ([]embeddedMigration, error) {
	names, err := fs.Glob(embeddedmigrations.Files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]embeddedMigration, 0, len(names))
	byVersion := make(map[string]string, len(names))
	for _, name := range names {
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		order, err := strconv.Atoi(version)
		if err != nil {
			continue
		}
		if previous, exists := byVersion[version]; exists {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, previous, name)
		}
		byVersion[version] = name

		body, err := fs.ReadFile(embeddedmigrations.Files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, embeddedMigration{
			Version:    version,
			Order:      order,
			Name:       name,
			Statements: splitSQLStatements(string(body)),
		})
	}

	slices.SortFunc(migrations, func(a, b embeddedMigration) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.Name, b.Name))
	})
	return migrations, nil
}

// splitSQLStatements splits on semicolons. Migrations must not contain
// semicolons inside string literals or triggers.
func splitSQLStatements(sqlText string) []string {
	var statements []string
	for part := range strings.SplitSeq(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(strings.TrimSpace(identifier), "\"`[]")
}
