package migrations

import (
	"database/sql"
	"fmt"
)

func CreateAccounts(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE accounts (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			inception_date DATE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create accounts: %w", err)
	}
	return nil
}

func CreateAccountValuations(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE account_valuations (
			account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			report_date DATE NOT NULL,
			nav NUMERIC(20, 8) NOT NULL CHECK (nav >= 0),
			portfolio_value NUMERIC(20, 4) NOT NULL CHECK (portfolio_value >= 0),
			cash_in_out NUMERIC(20, 4) NOT NULL DEFAULT 0,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (account_id, report_date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create account_valuations: %w", err)
	}
	return nil
}

func CreateBenchmarkPrices(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE benchmark_prices (
			symbol TEXT NOT NULL,
			price_date DATE NOT NULL,
			value NUMERIC(20, 6) NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (symbol, price_date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create benchmark_prices: %w", err)
	}

	// Stamps scan the newest update per symbol
	_, err = tx.Exec(`CREATE INDEX idx_benchmark_prices_updated ON benchmark_prices (symbol, updated_at)`)
	if err != nil {
		return fmt.Errorf("failed to create benchmark index: %w", err)
	}
	return nil
}

func dropTable(name string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + name); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
		return nil
	}
}
