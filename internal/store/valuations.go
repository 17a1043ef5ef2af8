package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"investorportal/internal/analytics"
	"investorportal/internal/calendar"
)

// Valuations returns the valuation history of an account in date order.
// Nil bounds leave the range open on that side. An unknown account yields
// ErrNotFound rather than an empty history.
func (p *Postgres) Valuations(ctx context.Context, accountID int, from, to *time.Time) ([]analytics.ValuationRecord, error) {
	if _, err := p.Account(ctx, accountID); err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT report_date, nav, portfolio_value, cash_in_out
		FROM account_valuations
		WHERE account_id = $1
			AND ($2::date IS NULL OR report_date >= $2::date)
			AND ($3::date IS NULL OR report_date <= $3::date)
		ORDER BY report_date
	`, accountID, nullDate(from), nullDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations: %w", err)
	}
	defer rows.Close()

	records := []analytics.ValuationRecord{}
	for rows.Next() {
		var on time.Time
		var nav, value, cash decimal.Decimal
		if err := rows.Scan(&on, &nav, &value, &cash); err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}
		records = append(records, analytics.ValuationRecord{
			ReportDate:     calendar.Day(on),
			NAV:            nav.InexactFloat64(),
			PortfolioValue: value.InexactFloat64(),
			CashInOut:      cash.InexactFloat64(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read valuations: %w", err)
	}
	return records, nil
}

// UpsertValuations writes records for an account in one transaction. A
// record for a date that is already stored replaces it.
func (p *Postgres) UpsertValuations(ctx context.Context, accountID int, records []analytics.ValuationRecord) (int, error) {
	if _, err := p.Account(ctx, accountID); err != nil {
		return 0, err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO account_valuations (account_id, report_date, nav, portfolio_value, cash_in_out, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (account_id, report_date) DO UPDATE SET
			nav = EXCLUDED.nav,
			portfolio_value = EXCLUDED.portfolio_value,
			cash_in_out = EXCLUDED.cash_in_out,
			updated_at = NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			accountID,
			calendar.Day(r.ReportDate),
			decimal.NewFromFloat(r.NAV),
			decimal.NewFromFloat(r.PortfolioValue),
			decimal.NewFromFloat(r.CashInOut),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert valuation %s: %w", calendar.Format(r.ReportDate), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit valuations: %w", err)
	}
	return len(records), nil
}

// HistoryStamp changes whenever the stored history of an account changes.
func (p *Postgres) HistoryStamp(ctx context.Context, accountID int) (string, error) {
	var count int
	var latest sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(updated_at)
		FROM account_valuations
		WHERE account_id = $1
	`, accountID).Scan(&count, &latest)
	if err != nil {
		return "", fmt.Errorf("failed to stamp history: %w", err)
	}
	return stamp(count, latest), nil
}
