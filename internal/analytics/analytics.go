package analytics

import "time"

// DefaultEpisodeLimit is the number of drawdown episodes reported by default.
const DefaultEpisodeLimit = 5

// Options tunes a computation.
type Options struct {
	// InceptionDate anchors the Since Inception return. Nil means the first
	// record.
	InceptionDate *time.Time
	// EpisodeLimit caps the drawdown episodes; 0 uses DefaultEpisodeLimit
	// and a negative value keeps them all.
	EpisodeLimit int
}

// Result is everything derived from one account history.
type Result struct {
	Records             []EnrichedRecord     `json:"records"`
	Portfolio           DrawdownStats        `json:"portfolio_drawdown"`
	Benchmark           *DrawdownStats       `json:"benchmark_drawdown,omitempty"`
	PortfolioReturns    TrailingReturns      `json:"portfolio_returns"`
	BenchmarkReturns    TrailingReturns      `json:"benchmark_returns,omitempty"`
	Quarterly           map[int]QuarterlyPnl `json:"quarterly_pnl"`
	Monthly             map[int]MonthlyPnl   `json:"monthly_pnl"`
	Episodes            []DrawdownEpisode    `json:"drawdown_episodes"`
	MoneyWeightedReturn Percent              `json:"money_weighted_return"`
	Pnl                 PnlResult            `json:"-"`
}

// HasBenchmark reports whether benchmark fields were derived.
func (r *Result) HasBenchmark() bool { return r.Benchmark != nil }

// Compute runs the whole pipeline over one account history and an optional
// benchmark. Inputs are copied, sorted and de-duplicated first and are never
// modified. An empty history yields an empty result.
func Compute(history []ValuationRecord, benchmark []BenchmarkRecord, opts Options) *Result {
	records := SortValuations(history)
	bench := SortBenchmark(benchmark)

	res := &Result{
		Records:   []EnrichedRecord{},
		Quarterly: map[int]QuarterlyPnl{},
		Monthly:   map[int]MonthlyPnl{},
		Episodes:  []DrawdownEpisode{},
	}
	if len(records) == 0 {
		return res
	}

	enriched, portfolioDD, benchmarkDD := ApplyDrawdown(Align(records, bench))
	res.Records = enriched
	res.Portfolio = portfolioDD
	res.Benchmark = benchmarkDD

	if records[0].NAV > 0 {
		navs := NAVSeries(records)
		res.PortfolioReturns = TrailingReturnsFor(navs, opts.InceptionDate)
		if eps := Episodes(navs, episodeLimit(opts.EpisodeLimit)); len(eps) > 0 {
			res.Episodes = eps
		}
	} else {
		res.PortfolioReturns = TrailingReturnsFor(nil, nil)
	}
	if levels := BenchmarkSeries(enriched); levels != nil {
		res.BenchmarkReturns = TrailingReturnsFor(levels, opts.InceptionDate)
	}

	res.Pnl = AggregatePnl(records)
	res.Quarterly, res.Monthly = FormatPnl(res.Pnl)
	res.MoneyWeightedReturn = MoneyWeightedReturn(records)
	return res
}

func episodeLimit(n int) int {
	switch {
	case n == 0:
		return DefaultEpisodeLimit
	case n < 0:
		return 0
	default:
		return n
	}
}
