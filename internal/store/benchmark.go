package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"investorportal/internal/analytics"
	"investorportal/internal/calendar"
)

// Benchmark returns the stored levels of an index in date order. An unknown
// symbol yields an empty series.
func (p *Postgres) Benchmark(ctx context.Context, symbol string, from, to *time.Time) ([]analytics.BenchmarkRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT price_date, value
		FROM benchmark_prices
		WHERE symbol = $1
			AND ($2::date IS NULL OR price_date >= $2::date)
			AND ($3::date IS NULL OR price_date <= $3::date)
		ORDER BY price_date
	`, symbol, nullDate(from), nullDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark %s: %w", symbol, err)
	}
	defer rows.Close()

	records := []analytics.BenchmarkRecord{}
	for rows.Next() {
		var on time.Time
		var value decimal.Decimal
		if err := rows.Scan(&on, &value); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark price: %w", err)
		}
		records = append(records, analytics.BenchmarkRecord{Date: calendar.Day(on), Value: value.InexactFloat64()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read benchmark %s: %w", symbol, err)
	}
	return records, nil
}

// UpsertBenchmark stores index levels collected from source.
func (p *Postgres) UpsertBenchmark(ctx context.Context, symbol, source string, records []analytics.BenchmarkRecord) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO benchmark_prices (symbol, price_date, value, source, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (symbol, price_date) DO UPDATE SET
			value = EXCLUDED.value,
			source = EXCLUDED.source,
			updated_at = NOW()
		WHERE benchmark_prices.value <> EXCLUDED.value
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, symbol, calendar.Day(r.Date), decimal.NewFromFloat(r.Value), source); err != nil {
			return 0, fmt.Errorf("failed to upsert %s on %s: %w", symbol, calendar.Format(r.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit benchmark prices: %w", err)
	}
	return len(records), nil
}

// LatestBenchmarkDate returns the last stored date of an index. ok is false
// when nothing is stored yet.
func (p *Postgres) LatestBenchmarkDate(ctx context.Context, symbol string) (latest time.Time, ok bool, err error) {
	var on sql.NullTime
	err = p.db.QueryRowContext(ctx, `
		SELECT MAX(price_date) FROM benchmark_prices WHERE symbol = $1
	`, symbol).Scan(&on)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, fmt.Errorf("failed to get latest %s date: %w", symbol, err)
	}
	if !on.Valid {
		return time.Time{}, false, nil
	}
	return calendar.Day(on.Time), true, nil
}

// BenchmarkStamp changes whenever the stored levels of an index change.
func (p *Postgres) BenchmarkStamp(ctx context.Context, symbol string) (string, error) {
	var count int
	var latest sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(updated_at)
		FROM benchmark_prices
		WHERE symbol = $1
	`, symbol).Scan(&count, &latest)
	if err != nil {
		return "", fmt.Errorf("failed to stamp benchmark: %w", err)
	}
	return stamp(count, latest), nil
}
