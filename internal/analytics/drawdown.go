package analytics

import (
	"encoding/json"
	"sort"
	"time"

	"investorportal/internal/calendar"
)

// DrawdownStats summarizes a drawdown series.
type DrawdownStats struct {
	Current Percent `json:"current_drawdown"`
	Max     Percent `json:"max_drawdown"`
}

// TrackDrawdown computes, in one forward pass, how far each value sits below
// the running peak, as a positive percentage. The peak starts at values[0].
func TrackDrawdown(values []float64) ([]float64, DrawdownStats) {
	if len(values) == 0 {
		return nil, DrawdownStats{}
	}
	drawdowns := make([]float64, len(values))
	peak := values[0]
	maxDD := 0.0
	for i, v := range values {
		peak = max(peak, v)
		dd := 0.0
		if peak > 0 {
			dd = -((v - peak) / peak * 100)
		}
		drawdowns[i] = dd
		maxDD = max(maxDD, dd)
	}
	return drawdowns, DrawdownStats{
		Current: Available(drawdowns[len(drawdowns)-1]),
		Max:     Available(maxDD),
	}
}

// ApplyDrawdown returns a copy of records with the drawdown fields filled from
// the normalized NAV and, when present, the normalized benchmark. The
// benchmark stats are nil when the records carry no benchmark.
func ApplyDrawdown(records []EnrichedRecord) ([]EnrichedRecord, DrawdownStats, *DrawdownStats) {
	out := make([]EnrichedRecord, len(records))
	copy(out, records)

	var portfolio DrawdownStats
	if navs, ok := normalizedValues(out, func(r EnrichedRecord) *float64 { return r.NormalizedNAV }); ok {
		dds, stats := TrackDrawdown(navs)
		for i := range out {
			out[i].DrawdownPercent = ptr(dds[i])
		}
		portfolio = stats
	}

	var benchmark *DrawdownStats
	if levels, ok := normalizedValues(out, func(r EnrichedRecord) *float64 { return r.NormalizedBenchmark }); ok {
		dds, stats := TrackDrawdown(levels)
		for i := range out {
			out[i].BenchmarkDrawdownPercent = ptr(dds[i])
		}
		benchmark = &stats
	}
	return out, portfolio, benchmark
}

// normalizedValues collects field over records, or false if any is missing.
func normalizedValues(records []EnrichedRecord, field func(EnrichedRecord) *float64) ([]float64, bool) {
	if len(records) == 0 {
		return nil, false
	}
	values := make([]float64, len(records))
	for i, r := range records {
		v := field(r)
		if v == nil {
			return nil, false
		}
		values[i] = *v
	}
	return values, true
}

// DrawdownEpisode is one peak-to-recovery decline.
type DrawdownEpisode struct {
	Start        time.Time  // date of the peak the decline started from
	Trough       time.Time  // date of the lowest point
	Recovery     *time.Time // first date back at the peak, nil while still open
	Percent      float64    // depth at the trough, positive
	DurationDays int        // from Start to Recovery, or to the last date if open
}

func (e DrawdownEpisode) MarshalJSON() ([]byte, error) {
	var recovery *string
	if e.Recovery != nil {
		s := calendar.Format(*e.Recovery)
		recovery = &s
	}
	return json.Marshal(struct {
		Start        string  `json:"start_date"`
		Trough       string  `json:"trough_date"`
		Recovery     *string `json:"recovery_date"`
		Percent      float64 `json:"percentage"`
		DurationDays int     `json:"duration_days"`
	}{calendar.Format(e.Start), calendar.Format(e.Trough), recovery, e.Percent, e.DurationDays})
}

// Episodes lists the deepest drawdown episodes of a series, deepest first.
// A non-positive limit returns all of them.
func Episodes(series []Point, limit int) []DrawdownEpisode {
	if len(series) == 0 {
		return nil
	}
	var (
		all     []DrawdownEpisode
		current *DrawdownEpisode
		peak    = series[0]
	)
	for _, p := range series {
		if p.Value >= peak.Value {
			if current != nil {
				recovered := p.Date
				current.Recovery = &recovered
				current.DurationDays = days(current.Start, recovered)
				all = append(all, *current)
				current = nil
			}
			peak = p
			continue
		}
		if peak.Value <= 0 {
			continue
		}
		depth := (peak.Value - p.Value) / peak.Value * 100
		if current == nil {
			current = &DrawdownEpisode{Start: peak.Date, Trough: p.Date, Percent: depth}
		} else if depth > current.Percent {
			current.Trough = p.Date
			current.Percent = depth
		}
	}
	if current != nil {
		current.DurationDays = days(current.Start, series[len(series)-1].Date)
		all = append(all, *current)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Percent > all[j].Percent })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

func days(from, to time.Time) int { return int(to.Sub(from).Hours() / 24) }
