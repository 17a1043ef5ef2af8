package analytics

import (
	"sort"
	"time"
)

// NormalizedBase is the index level every normalized series starts from.
const NormalizedBase = 100.0

// Align joins each valuation to the benchmark level in force on its date and
// rebases NAV and benchmark to NormalizedBase at the first record.
//
// Both inputs must be sorted ascending. The output has one record per
// valuation, in the same order. NAV normalization is skipped when the first
// NAV is not positive. Benchmark fields are set on every record or on none:
// if the first valuation date has no benchmark level at or before it, the
// benchmark is left out of the whole series.
func Align(history []ValuationRecord, benchmark []BenchmarkRecord) []EnrichedRecord {
	out := make([]EnrichedRecord, len(history))
	for i, r := range history {
		out[i].ValuationRecord = r
	}
	if len(history) == 0 {
		return out
	}

	if base := history[0].NAV; base > 0 {
		for i := range out {
			out[i].NormalizedNAV = ptr(out[i].NAV / base * NormalizedBase)
		}
	}

	levels, ok := benchmarkLevels(history, benchmark)
	if !ok {
		return out
	}
	base := levels[0]
	for i := range out {
		out[i].BenchmarkValue = ptr(levels[i])
		out[i].NormalizedBenchmark = ptr(levels[i] / base * NormalizedBase)
	}
	return out
}

// benchmarkLevels returns the backward-filled benchmark level for every
// valuation date, or false when no positive base exists at the first date.
func benchmarkLevels(history []ValuationRecord, benchmark []BenchmarkRecord) ([]float64, bool) {
	if len(benchmark) == 0 {
		return nil, false
	}
	levels := make([]float64, len(history))
	j := -1 // last benchmark index with Date <= current valuation date
	for i, r := range history {
		for j+1 < len(benchmark) && !benchmark[j+1].Date.After(r.ReportDate) {
			j++
		}
		if j < 0 {
			// history dates ascend, so a gap can only occur at the start
			return nil, false
		}
		levels[i] = benchmark[j].Value
	}
	if levels[0] <= 0 {
		return nil, false
	}
	return levels, true
}

// Point is a dated value of a series.
type Point struct {
	Date  time.Time
	Value float64
}

// pointAsOf returns the last point dated on or before day.
func pointAsOf(series []Point, day time.Time) (Point, bool) {
	i := sort.Search(len(series), func(i int) bool { return series[i].Date.After(day) })
	if i == 0 {
		return Point{}, false
	}
	return series[i-1], true
}

// NAVSeries extracts the (date, NAV) series from records.
func NAVSeries(records []ValuationRecord) []Point {
	out := make([]Point, len(records))
	for i, r := range records {
		out[i] = Point{Date: r.ReportDate, Value: r.NAV}
	}
	return out
}

// BenchmarkSeries extracts the aligned benchmark levels, or nil when the
// records carry no benchmark.
func BenchmarkSeries(records []EnrichedRecord) []Point {
	if len(records) == 0 || records[0].BenchmarkValue == nil {
		return nil
	}
	out := make([]Point, len(records))
	for i, r := range records {
		out[i] = Point{Date: r.ReportDate, Value: *r.BenchmarkValue}
	}
	return out
}

func ptr(v float64) *float64 { return &v }
