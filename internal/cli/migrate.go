package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/terraincognita07/medport/internal/config"
	"github.com/terraincognita07/medport/internal/db"
)

// RunMigrateCommand opens the database, which brings its schema up to date,
// and closes it again.
func RunMigrateCommand(out io.Writer, cfg config.DatabaseConfig, logger *slog.Logger) error {
	database, err := db.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	defer sqlDB.Close()

	target := cfg.Path
	if cfg.Driver == config.DriverPostgres {
		target = "postgres"
	}
	fmt.Fprintf(out, "Schema is up to date (%s)\n", target)
	return nil
}
