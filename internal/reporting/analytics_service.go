package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"investorportal/internal/analytics"
	"investorportal/internal/cache"
	"investorportal/internal/calendar"
	"investorportal/internal/store"
	"investorportal/internal/utils"
)

// HistorySource provides account valuation histories.
type HistorySource interface {
	Account(ctx context.Context, id int) (store.Account, error)
	Valuations(ctx context.Context, accountID int, from, to *time.Time) ([]analytics.ValuationRecord, error)
	HistoryStamp(ctx context.Context, accountID int) (string, error)
}

// BenchmarkSource provides stored index levels.
type BenchmarkSource interface {
	Benchmark(ctx context.Context, symbol string, from, to *time.Time) ([]analytics.BenchmarkRecord, error)
	BenchmarkStamp(ctx context.Context, symbol string) (string, error)
}

// AnalyticsService loads account histories, computes their analytics and
// memoizes the rendered reports.
type AnalyticsService struct {
	history          HistorySource
	benchmarks       BenchmarkSource
	cache            cache.Store
	ttl              time.Duration
	defaultBenchmark string
	logger           *utils.AppLogger
	perf             *utils.PerformanceTracker
	validate         *validator.Validate
	now              func() time.Time
}

// ServiceConfig holds the optional parts of an AnalyticsService. A nil
// Cache disables memoization.
type ServiceConfig struct {
	Cache            cache.Store
	CacheTTL         time.Duration
	DefaultBenchmark string
}

func NewAnalyticsService(history HistorySource, benchmarks BenchmarkSource, cfg ServiceConfig, logger *utils.AppLogger, perf *utils.PerformanceTracker) *AnalyticsService {
	return &AnalyticsService{
		history:          history,
		benchmarks:       benchmarks,
		cache:            cfg.Cache,
		ttl:              cfg.CacheTTL,
		defaultBenchmark: cfg.DefaultBenchmark,
		logger:           logger,
		perf:             perf,
		validate:         validator.New(),
		now:              time.Now,
	}
}

// Report returns the rendered JSON report for q, from the cache when the
// stored data has not changed since it was computed. hit reports whether
// the cache answered.
func (s *AnalyticsService) Report(ctx context.Context, q ReportQuery) (body []byte, hit bool, err error) {
	if q.Benchmark == "" {
		q.Benchmark = s.defaultBenchmark
	}

	key, ok := s.cacheKey(ctx, q)
	if ok {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Error("Cache read failed for %s: %v", key, err)
		} else if found {
			return cached, true, nil
		}
	}

	report, err := s.GeneratePerformanceReport(ctx, q)
	if err != nil {
		return nil, false, err
	}
	body, err = json.Marshal(report)
	if err != nil {
		return nil, false, fmt.Errorf("failed to render report: %w", err)
	}

	if ok {
		if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
			s.logger.Error("Cache write failed for %s: %v", key, err)
		}
	}
	return body, false, nil
}

// cacheKey builds the memoization key of q. ok is false when caching is off
// or the data stamps cannot be read.
func (s *AnalyticsService) cacheKey(ctx context.Context, q ReportQuery) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	historyStamp, err := s.history.HistoryStamp(ctx, q.AccountID)
	if err != nil {
		s.logger.Error("Skipping cache, history stamp failed: %v", err)
		return "", false
	}
	var benchmarkStamp string
	if q.Benchmark != "" {
		benchmarkStamp, err = s.benchmarks.BenchmarkStamp(ctx, q.Benchmark)
		if err != nil {
			s.logger.Error("Skipping cache, benchmark stamp failed: %v", err)
			return "", false
		}
	}
	return cache.ReportKey{
		AccountID:      q.AccountID,
		Benchmark:      q.Benchmark,
		Inception:      formatOptional(q.Inception),
		From:           formatOptional(q.From),
		To:             formatOptional(q.To),
		HistoryStamp:   historyStamp,
		BenchmarkStamp: benchmarkStamp,
	}.String(), true
}

// GeneratePerformanceReport loads the account history and benchmark and
// computes the report. A benchmark that cannot be loaded is logged and the
// report is produced without it.
func (s *AnalyticsService) GeneratePerformanceReport(ctx context.Context, q ReportQuery) (*PerformanceReport, error) {
	if q.Benchmark == "" {
		q.Benchmark = s.defaultBenchmark
	}
	logger := s.logger.WithFields(map[string]interface{}{
		"account_id": q.AccountID,
		"benchmark":  q.Benchmark,
	})

	account, err := s.history.Account(ctx, q.AccountID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	history, err := s.history.Valuations(ctx, q.AccountID, q.From, q.To)
	s.perf.Track("load_history", start)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	logger.Debug("Loaded %d valuation records", len(history))

	var bench []analytics.BenchmarkRecord
	if q.Benchmark != "" {
		start = time.Now()
		// Earlier levels are kept so the first record can be back-filled
		bench, err = s.benchmarks.Benchmark(ctx, q.Benchmark, nil, q.To)
		s.perf.Track("load_benchmark", start)
		if err != nil {
			logger.Error("Benchmark unavailable, continuing without it: %v", err)
			bench = nil
		}
	}

	inception := q.Inception
	if inception == nil {
		inception = account.InceptionDate
	}

	report := s.compute(history, bench, analytics.Options{InceptionDate: inception})
	report.AccountID = account.ID
	report.Name = account.Name
	report.Benchmark = q.Benchmark
	report.From = formatOptional(q.From)
	report.To = formatOptional(q.To)
	report.InceptionDate = formatOptional(inception)

	logger.Info("Report computed over %d records", len(report.Records))
	return report, nil
}

// Compute builds a report from an inline history. Nothing is read from or
// written to storage.
func (s *AnalyticsService) Compute(req ComputeRequest) (*PerformanceReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", analytics.ErrInvalidRecord, err)
	}
	history, err := analytics.ParseValuations(req.History)
	if err != nil {
		return nil, err
	}
	bench, err := analytics.ParseBenchmark(req.Benchmark)
	if err != nil {
		return nil, err
	}

	opts := analytics.Options{EpisodeLimit: req.EpisodeLimit}
	if req.InceptionDate != "" {
		d, err := calendar.ParseDate(req.InceptionDate)
		if err != nil {
			return nil, fmt.Errorf("%w: inception_date: %v", analytics.ErrInvalidRecord, err)
		}
		opts.InceptionDate = &d
	}

	report := s.compute(history, bench, opts)
	report.Benchmark = req.BenchmarkName
	report.InceptionDate = formatOptional(opts.InceptionDate)
	return report, nil
}

func (s *AnalyticsService) compute(history []analytics.ValuationRecord, bench []analytics.BenchmarkRecord, opts analytics.Options) *PerformanceReport {
	defer s.perf.Track("compute_analytics", time.Now())

	result := analytics.Compute(history, bench, opts)
	return &PerformanceReport{
		GeneratedAt:      s.now().UTC(),
		BenchmarkApplied: result.HasBenchmark(),
		Result:           result,
	}
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return calendar.Format(*t)
}
