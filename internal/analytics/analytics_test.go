package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []ValuationRecord {
	return []ValuationRecord{
		val("2023-01-02", 1.00, 100_000, 100_000),
		val("2023-03-31", 0.95, 95_000, 0),
		val("2023-07-03", 1.10, 115_000, 5_000),
		val("2023-10-02", 1.02, 106_600, 0),
		val("2024-01-02", 1.21, 126_500, 0),
	}
}

func sampleBenchmark() []BenchmarkRecord {
	return []BenchmarkRecord{
		bench("2022-12-30", 3800),
		bench("2023-06-30", 4400),
		bench("2023-12-29", 4750),
	}
}

func TestCompute(t *testing.T) {
	res := Compute(sampleHistory(), sampleBenchmark(), Options{})
	require.Len(t, res.Records, 5)
	require.True(t, res.HasBenchmark())

	assert.InDelta(t, 121, *res.Records[4].NormalizedNAV, 1e-9)
	assert.InDelta(t, 125, *res.Records[4].NormalizedBenchmark, 1e-9)
	assert.InDelta(t, 800.0/11, res.Portfolio.Max.Value, 1e-9)
	assert.InDelta(t, 0, res.Portfolio.Current.Value, 1e-9)

	assert.InDelta(t, 21, res.PortfolioReturns[Period1Y].Value, 1e-9)
	assert.InDelta(t, 25, res.BenchmarkReturns[Period1Y].Value, 1e-9)

	require.Contains(t, res.Quarterly, 2023)
	require.Contains(t, res.Monthly, 2024)
	assert.Equal(t, "2.00", res.Quarterly[2023].Percent[TotalKey])
	assert.Equal(t, "-5.00", res.Quarterly[2023].Percent["q1"])
	assert.NotEmpty(t, res.Episodes)
	assert.True(t, res.MoneyWeightedReturn.Valid)
}

func TestComputeIsIdempotent(t *testing.T) {
	history := sampleHistory()
	benchmark := sampleBenchmark()
	first, err := json.Marshal(Compute(history, benchmark, Options{}))
	require.NoError(t, err)
	second, err := json.Marshal(Compute(history, benchmark, Options{}))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestComputeDoesNotModifyInput(t *testing.T) {
	history := sampleHistory()
	// reversed order, so sorting a shared slice would show
	history[0], history[4] = history[4], history[0]
	snapshot := append([]ValuationRecord(nil), history...)
	benchmark := sampleBenchmark()
	benchSnapshot := append([]BenchmarkRecord(nil), benchmark...)

	Compute(history, benchmark, Options{})
	assert.Equal(t, snapshot, history)
	assert.Equal(t, benchSnapshot, benchmark)
}

func TestComputeEmptyHistory(t *testing.T) {
	res := Compute(nil, sampleBenchmark(), Options{})
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Quarterly)
	assert.Empty(t, res.Monthly)
	assert.Empty(t, res.Episodes)
	assert.False(t, res.HasBenchmark())
	assert.False(t, res.MoneyWeightedReturn.Valid)
}

func TestComputeWithoutBenchmarkBase(t *testing.T) {
	// the index only starts after the account does
	late := []BenchmarkRecord{bench("2023-06-30", 4400), bench("2023-12-29", 4750)}
	res := Compute(sampleHistory(), late, Options{})

	assert.False(t, res.HasBenchmark())
	assert.Nil(t, res.BenchmarkReturns)
	for _, r := range res.Records {
		assert.Nil(t, r.BenchmarkValue)
		assert.Nil(t, r.BenchmarkDrawdownPercent)
	}

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "benchmark_returns")
	assert.NotContains(t, string(body), "benchmark_drawdown")
}

func TestComputeDegenerateBaseNAV(t *testing.T) {
	history := []ValuationRecord{
		val("2023-01-02", 0, 0, 0),
		val("2023-06-01", 1, 1000, 1000),
		val("2024-01-02", 1.2, 1200, 0),
	}
	res := Compute(history, nil, Options{})
	require.Len(t, res.PortfolioReturns, len(TrailingPeriods))
	for _, label := range TrailingPeriods {
		assert.False(t, res.PortfolioReturns[label].Valid, label)
	}
	assert.False(t, res.Portfolio.Max.Valid)
	assert.Empty(t, res.Episodes)

	body, err := json.Marshal(res.PortfolioReturns)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"1Y":null`)
}

func TestComputeDuplicateDates(t *testing.T) {
	history := append(sampleHistory(), val("2023-03-31", 0.5, 1, 0))
	res := Compute(history, nil, Options{})
	require.Len(t, res.Records, 5)
	assert.Equal(t, 0.95, res.Records[1].NAV)
}

func TestComputeInceptionAndEpisodeLimit(t *testing.T) {
	inception := day("2023-07-03")
	res := Compute(sampleHistory(), nil, Options{InceptionDate: &inception, EpisodeLimit: 1})
	assert.InDelta(t, 10, res.PortfolioReturns[PeriodSinceInception].Value, 1e-9)
	assert.Len(t, res.Episodes, 1)
}

func TestComputeBenchmarkReturnsUsePortfolioDates(t *testing.T) {
	history := []ValuationRecord{
		val("2024-01-01", 1.0, 1000, 1000),
		val("2024-02-29", 1.1, 1100, 0),
	}
	benchmark := []BenchmarkRecord{
		bench("2024-01-01", 100),
		bench("2024-01-31", 120),
		bench("2024-02-22", 150),
		bench("2024-02-29", 160),
	}
	res := Compute(history, benchmark, Options{})

	// the 1M start (2024-01-31) falls back to the 2024-01-01 observation
	assert.InDelta(t, 10, res.PortfolioReturns[Period1M].Value, 1e-9)
	assert.InDelta(t, 60, res.BenchmarkReturns[Period1M].Value, 1e-9)
}
