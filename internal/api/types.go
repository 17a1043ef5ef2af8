package api

import (
	"context"
	"time"

	"investorportal/internal/analytics"
	"investorportal/internal/store"
)

// Repository is the storage behind the API.
type Repository interface {
	Ping(ctx context.Context) error

	Accounts(ctx context.Context) ([]store.Account, error)
	Account(ctx context.Context, id int) (store.Account, error)
	CreateAccount(ctx context.Context, name, description string, inception *time.Time) (store.Account, error)
	DeleteAccount(ctx context.Context, id int) error

	Valuations(ctx context.Context, accountID int, from, to *time.Time) ([]analytics.ValuationRecord, error)
	UpsertValuations(ctx context.Context, accountID int, records []analytics.ValuationRecord) (int, error)

	Benchmark(ctx context.Context, symbol string, from, to *time.Time) ([]analytics.BenchmarkRecord, error)
}

type CreateAccountRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=2000"`
	InceptionDate string `json:"inception_date"`
}

// HistoryResponse is the stored valuation history of an account
type HistoryResponse struct {
	AccountID int                         `json:"account_id"`
	Records   []analytics.ValuationRecord `json:"records"`
}

// IngestResponse reports how many valuations were written
type IngestResponse struct {
	AccountID int    `json:"account_id"`
	Upserted  int    `json:"upserted"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
}

// BenchmarkResponse is the stored history of one index
type BenchmarkResponse struct {
	Symbol string                      `json:"symbol"`
	Prices []analytics.BenchmarkRecord `json:"prices"`
}

// BenchmarkListResponse lists the indices kept in sync
type BenchmarkListResponse struct {
	Symbols []string `json:"symbols"`
	Default string   `json:"default,omitempty"`
	Source  string   `json:"source"`
}
