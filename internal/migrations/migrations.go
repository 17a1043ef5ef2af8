package migrations

import (
	"database/sql"
	"errors"
	"fmt"

	"investorportal/internal/utils"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*sql.Tx) error
	Down        func(*sql.Tx) error
}

var Migrations = []Migration{
	{
		Version:     1,
		Description: "Create accounts",
		Up:          CreateAccounts,
		Down:        dropTable("accounts"),
	},
	{
		Version:     2,
		Description: "Create account valuations",
		Up:          CreateAccountValuations,
		Down:        dropTable("account_valuations"),
	},
	{
		Version:     3,
		Description: "Create benchmark prices",
		Up:          CreateBenchmarkPrices,
		Down:        dropTable("benchmark_prices"),
	},
	// Add future migrations here
}

// CreateMigrationsTable creates the migrations table if it doesn't exist
func CreateMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version INTEGER PRIMARY KEY,
            description TEXT NOT NULL,
            applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
    `)
	return err
}

// Applied returns the versions recorded in schema_migrations.
func Applied(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// RunMigrations runs all pending migrations, each in its own transaction.
func RunMigrations(db *sql.DB, logger utils.Logger) error {
	if err := CreateMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := Applied(db)
	if err != nil {
		return err
	}

	ran := 0
	for _, migration := range Migrations {
		if applied[migration.Version] {
			continue
		}
		logger.Info("Running migration %d: %s", migration.Version, migration.Description)

		if err := apply(db, migration); err != nil {
			logger.Error("Migration %d failed: %v", migration.Version, err)
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		logger.Info("Migration %d completed successfully", migration.Version)
		ran++
	}

	if ran == 0 {
		logger.Debug("Schema up to date at version %d", Migrations[len(Migrations)-1].Version)
	}
	return nil
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.Up(tx); err != nil {
		return err
	}
	_, err = tx.Exec(
		"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
		m.Version,
		m.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

// RollbackLastMigration reverts the most recently applied migration.
func RollbackLastMigration(db *sql.DB, logger utils.Logger) error {
	var lastVersion int
	err := db.QueryRow(`
        SELECT version FROM schema_migrations
        ORDER BY version DESC LIMIT 1
    `).Scan(&lastVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no migration to roll back")
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	migration, ok := find(lastVersion)
	if !ok {
		return fmt.Errorf("migration %d is not known to this build", lastVersion)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := migration.Down(tx); err != nil {
		return fmt.Errorf("rollback of migration %d failed: %w", lastVersion, err)
	}

	_, err = tx.Exec(`
        DELETE FROM schema_migrations
        WHERE version = $1
    `, lastVersion)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Info("Rolled back migration %d: %s", migration.Version, migration.Description)
	return nil
}

func find(version int) (Migration, bool) {
	for _, m := range Migrations {
		if m.Version == version {
			return m, true
		}
	}
	return Migration{}, false
}
