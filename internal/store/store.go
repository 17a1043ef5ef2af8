// Package store persists account valuations and benchmark prices in
// PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when an account does not exist.
var ErrNotFound = errors.New("not found")

// Postgres is the repository for accounts, their valuation history and
// benchmark prices.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Open connects to the database and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Ping reports whether the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// nullDate maps an open range bound to SQL NULL.
func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// stamp summarizes a row set so that any insert or update changes it.
func stamp(count int, latest sql.NullTime) string {
	if !latest.Valid {
		return fmt.Sprintf("%d@0", count)
	}
	return fmt.Sprintf("%d@%d", count, latest.Time.UnixNano())
}
