package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investorportal/internal/analytics"
	"investorportal/internal/calendar"
	"investorportal/internal/migrations"
	"investorportal/internal/utils"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PORTAL_TEST_DSN")
	if dsn == "" {
		t.Skip("PORTAL_TEST_DSN not set")
	}
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.RunMigrations(db, utils.NewDiscardLogger()))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgresValuations(t *testing.T) {
	ctx := context.Background()
	p := NewPostgres(testDB(t))

	inception := calendar.Date(2024, time.January, 1)
	account, err := p.CreateAccount(ctx, "test account", "", &inception)
	require.NoError(t, err)
	t.Cleanup(func() { p.DeleteAccount(context.Background(), account.ID) })
	require.NotNil(t, account.InceptionDate)
	assert.Equal(t, inception, *account.InceptionDate)

	before, err := p.HistoryStamp(ctx, account.ID)
	require.NoError(t, err)

	records := []analytics.ValuationRecord{
		{ReportDate: calendar.Date(2024, 1, 2), NAV: 1, PortfolioValue: 1000, CashInOut: 1000},
		{ReportDate: calendar.Date(2024, 1, 3), NAV: 1.0125, PortfolioValue: 1012.5},
	}
	n, err := p.UpsertValuations(ctx, account.ID, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := p.Valuations(ctx, account.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	from := calendar.Date(2024, 1, 3)
	got, err = p.Valuations(ctx, account.ID, &from, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	after, err := p.HistoryStamp(ctx, account.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestPostgresUnknownAccount(t *testing.T) {
	p := NewPostgres(testDB(t))
	_, err := p.Valuations(context.Background(), -1, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, p.DeleteAccount(context.Background(), -1), ErrNotFound)
}

func TestPostgresBenchmark(t *testing.T) {
	ctx := context.Background()
	p := NewPostgres(testDB(t))
	symbol := fmt.Sprintf("TEST%d", time.Now().UnixNano())
	t.Cleanup(func() {
		p.db.Exec(`DELETE FROM benchmark_prices WHERE symbol = $1`, symbol)
	})

	_, ok, err := p.LatestBenchmarkDate(ctx, symbol)
	require.NoError(t, err)
	assert.False(t, ok)

	records := []analytics.BenchmarkRecord{
		{Date: calendar.Date(2024, 1, 4), Value: 4688.68},
		{Date: calendar.Date(2024, 1, 5), Value: 4697.24},
	}
	_, err = p.UpsertBenchmark(ctx, symbol, "test", records)
	require.NoError(t, err)

	got, err := p.Benchmark(ctx, symbol, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	latest, ok, err := p.LatestBenchmarkDate(ctx, symbol)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, calendar.Date(2024, 1, 5), latest)
}

func TestStamp(t *testing.T) {
	assert.Equal(t, "0@0", stamp(0, sql.NullTime{}))
	at := time.Unix(0, 42)
	assert.Equal(t, "3@42", stamp(3, sql.NullTime{Time: at, Valid: true}))
}
