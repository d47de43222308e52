// Package migration creates the document tables backing the aggregate stores.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jasonhew98/e-commerce-service/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinel is created by the last step, so a partially applied schema is migrated again.
// Every step is idempotent.
const sentinel = "public.idx_products_product_name"

func documentTable(name string) migrationStep {
	return migrationStep{
		Name: "create_table_" + name,
		SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id          TEXT        PRIMARY KEY,
  data        JSONB       NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL,
  modified_at TIMESTAMPTZ NOT NULL
);`, name),
	}
}

func createdAtIndex(table string) migrationStep {
	return migrationStep{
		Name: "create_index_" + table + "_created_at",
		SQL:  fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s (created_at);`, table),
	}
}

var steps = []migrationStep{
	documentTable("accounts"),
	createdAtIndex("accounts"),
	{
		Name: "create_index_accounts_email",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts ((data->>'email'));`,
	},
	documentTable("users"),
	createdAtIndex("users"),
	{
		Name: "create_unique_index_users_user_name",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS ux_users_user_name ON users ((data->>'user_name'));`,
	},
	{
		Name: "create_index_users_email",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_email ON users ((data->>'email'));`,
	},
	documentTable("products"),
	createdAtIndex("products"),
	{
		Name: "create_index_products_product_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_product_name ON products ((data->>'product_name'));`,
	},
}

// EnsureMigrated checks for the sentinel index and runs all steps when it is missing.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logger.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := fmt.Sprintf("SELECT to_regclass('%s') IS NOT NULL", sentinel)
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success", "status", "success", "duration_ms", time.Since(start).Milliseconds())
	return nil
}
