package reporting

import (
	"time"

	"investorportal/internal/analytics"
)

// ReportQuery selects the history a report is computed from.
type ReportQuery struct {
	AccountID int
	Benchmark string     // index symbol; empty uses the configured default
	Inception *time.Time // overrides the account's inception date
	From      *time.Time
	To        *time.Time
}

// PerformanceReport is the analytics result of one account together with
// the parameters it was computed for.
type PerformanceReport struct {
	// Basic Info
	AccountID     int       `json:"account_id,omitempty"`
	Name          string    `json:"name,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to,omitempty"`
	InceptionDate string    `json:"inception_date,omitempty"`

	// Benchmark is the requested index. BenchmarkApplied is false when its
	// prices were unavailable or did not cover the start of the history.
	Benchmark        string `json:"benchmark,omitempty"`
	BenchmarkApplied bool   `json:"benchmark_applied"`

	*analytics.Result
}

// ComputeRequest carries a history and benchmark inline, for computing a
// report without anything stored.
type ComputeRequest struct {
	History       []analytics.RawValuation `json:"history" validate:"required"`
	Benchmark     []analytics.RawBenchmark `json:"benchmark"`
	BenchmarkName string                   `json:"benchmark_name"`
	InceptionDate string                   `json:"inception_date"`
	EpisodeLimit  int                      `json:"episode_limit" validate:"gte=-1,lte=100"`
}
