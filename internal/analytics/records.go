// Package analytics turns an account's valuation history (and an optional
// market benchmark) into the performance figures shown to investors:
// normalized growth, drawdowns, trailing returns and calendar P&L.
//
// Everything in this package is a pure function of its inputs. Nothing here
// performs I/O or keeps state between calls, so one computation per account
// can run on its own goroutine without coordination.
package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"investorportal/internal/calendar"
)

// ValuationRecord is one dated observation of an account.
type ValuationRecord struct {
	ReportDate     time.Time
	NAV            float64 // unit price
	PortfolioValue float64 // total marked value
	CashInOut      float64 // net capital booked that day, signed
}

type valuationJSON struct {
	ReportDate     string  `json:"report_date"`
	NAV            float64 `json:"nav"`
	PortfolioValue float64 `json:"portfolio_value"`
	CashInOut      float64 `json:"cash_in_out"`
}

func (r ValuationRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(valuationJSON{
		ReportDate:     calendar.Format(r.ReportDate),
		NAV:            r.NAV,
		PortfolioValue: r.PortfolioValue,
		CashInOut:      r.CashInOut,
	})
}

// BenchmarkRecord is one index level of a market benchmark.
type BenchmarkRecord struct {
	Date  time.Time
	Value float64
}

func (b BenchmarkRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}{calendar.Format(b.Date), b.Value})
}

// EnrichedRecord is a ValuationRecord with its derived chart series.
// Pointer fields are nil when the value could not be derived.
type EnrichedRecord struct {
	ValuationRecord
	NormalizedNAV            *float64
	DrawdownPercent          *float64
	NormalizedBenchmark      *float64
	BenchmarkValue           *float64
	BenchmarkDrawdownPercent *float64
}

func (e EnrichedRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		valuationJSON
		NormalizedNAV            *float64 `json:"normalized_nav,omitempty"`
		DrawdownPercent          *float64 `json:"drawdown_percent,omitempty"`
		NormalizedBenchmark      *float64 `json:"normalized_benchmark,omitempty"`
		BenchmarkValue           *float64 `json:"benchmark_value,omitempty"`
		BenchmarkDrawdownPercent *float64 `json:"benchmark_drawdown_percent,omitempty"`
	}{
		valuationJSON: valuationJSON{
			ReportDate:     calendar.Format(e.ReportDate),
			NAV:            e.NAV,
			PortfolioValue: e.PortfolioValue,
			CashInOut:      e.CashInOut,
		},
		NormalizedNAV:            e.NormalizedNAV,
		DrawdownPercent:          e.DrawdownPercent,
		NormalizedBenchmark:      e.NormalizedBenchmark,
		BenchmarkValue:           e.BenchmarkValue,
		BenchmarkDrawdownPercent: e.BenchmarkDrawdownPercent,
	})
}

// Percent is a percentage that may be unavailable. The zero value is
// unavailable, which keeps it distinct from a legitimate 0% figure.
type Percent struct {
	Value float64
	Valid bool
}

// Unavailable marks a figure that could not be computed.
var Unavailable = Percent{}

// Available wraps v, turning NaN and infinities into Unavailable.
func Available(v float64) Percent {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable
	}
	return Percent{Value: v, Valid: true}
}

func (p Percent) String() string {
	if !p.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", p.Value)
}

// MarshalJSON encodes an unavailable percent as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func (p *Percent) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = Unavailable
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Available(v)
	return nil
}

// SortValuations returns a copy of records with dates truncated to calendar
// days, sorted ascending. When several records share a date the first one in
// input order is kept and the others are dropped.
func SortValuations(records []ValuationRecord) []ValuationRecord {
	out := make([]ValuationRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].ReportDate = calendar.Day(out[i].ReportDate)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReportDate.Before(out[j].ReportDate) })
	return dedupe(out, func(r ValuationRecord) time.Time { return r.ReportDate })
}

// SortBenchmark is SortValuations for benchmark observations.
func SortBenchmark(records []BenchmarkRecord) []BenchmarkRecord {
	out := make([]BenchmarkRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].Date = calendar.Day(out[i].Date)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return dedupe(out, func(r BenchmarkRecord) time.Time { return r.Date })
}

// dedupe drops records whose date equals the previous one. s must be sorted.
func dedupe[T any](s []T, date func(T) time.Time) []T {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, r := range s[1:] {
		if date(r).Equal(date(out[len(out)-1])) {
			continue
		}
		out = append(out, r)
	}
	return out
}
