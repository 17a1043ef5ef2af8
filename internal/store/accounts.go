package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Account is an investment account whose valuations are tracked.
type Account struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	InceptionDate *time.Time `json:"inception_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

const accountColumns = `id, name, description, inception_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var a Account
	var inception sql.NullTime
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &inception, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, err
	}
	if inception.Valid {
		d := inception.Time.UTC()
		a.InceptionDate = &d
	}
	return a, nil
}

// CreateAccount inserts a new account.
func (p *Postgres) CreateAccount(ctx context.Context, name, description string, inception *time.Time) (Account, error) {
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO accounts (name, description, inception_date)
		VALUES ($1, $2, $3)
		RETURNING `+accountColumns,
		name, description, nullDate(inception),
	)
	a, err := scanAccount(row)
	if err != nil {
		return Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return a, nil
}

// Accounts lists every account, newest first.
func (p *Postgres) Accounts(ctx context.Context) ([]Account, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Account returns one account or ErrNotFound.
func (p *Postgres) Account(ctx context.Context, id int) (Account, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return a, nil
}

// DeleteAccount removes an account together with its valuations.
func (p *Postgres) DeleteAccount(ctx context.Context, id int) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete account %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return nil
}
