package benchmark

import (
	"context"
	"fmt"
	"time"

	"investorportal/internal/analytics"
	"investorportal/internal/calendar"
	"investorportal/internal/utils"
)

// Source is anything that can produce index history.
type Source interface {
	Name() string
	History(ctx context.Context, symbol string, from, to time.Time) ([]analytics.BenchmarkRecord, error)
}

// Sink stores index history.
type Sink interface {
	LatestBenchmarkDate(ctx context.Context, symbol string) (time.Time, bool, error)
	UpsertBenchmark(ctx context.Context, symbol, source string, records []analytics.BenchmarkRecord) (int, error)
}

// Syncer pulls new index levels from a Source into a Sink.
type Syncer struct {
	source        Source
	sink          Sink
	symbols       []string
	backfillYears int
	logger        *utils.AppLogger
	perf          *utils.PerformanceTracker
	now           func() time.Time
}

func NewSyncer(source Source, sink Sink, symbols []string, backfillYears int, logger *utils.AppLogger, perf *utils.PerformanceTracker) *Syncer {
	if backfillYears <= 0 {
		backfillYears = 10
	}
	return &Syncer{
		source:        source,
		sink:          sink,
		symbols:       symbols,
		backfillYears: backfillYears,
		logger:        logger,
		perf:          perf,
		now:           time.Now,
	}
}

// SyncAll syncs every configured symbol. A failing symbol is logged and does
// not stop the others; the number of failures is reported in the error.
func (s *Syncer) SyncAll(ctx context.Context) error {
	failed := 0
	for _, symbol := range s.symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.Sync(ctx, symbol)
		if err != nil {
			failed++
			s.logger.Error("Benchmark sync failed for %s: %v", symbol, err)
			continue
		}
		s.logger.Info("Benchmark %s synced, %d prices stored", symbol, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d benchmarks failed to sync", failed, len(s.symbols))
	}
	return nil
}

// Sync fetches the levels of one symbol newer than the last stored date.
// The last stored date is fetched again so a late correction replaces it.
// An empty store is backfilled.
func (s *Syncer) Sync(ctx context.Context, symbol string) (int, error) {
	defer s.perf.Track("benchmark_sync", time.Now())

	today := calendar.Day(s.now())
	latest, ok, err := s.sink.LatestBenchmarkDate(ctx, symbol)
	if err != nil {
		return 0, err
	}
	from := today.AddDate(-s.backfillYears, 0, 0)
	if ok {
		from = latest
	}
	if from.After(today) {
		return 0, nil
	}

	records, err := s.source.History(ctx, symbol, from, today)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	return s.sink.UpsertBenchmark(ctx, symbol, s.source.Name(), records)
}
