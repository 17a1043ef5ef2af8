package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingReturnsSixMonthsAndOneYear(t *testing.T) {
	series := []Point{
		pt("2023-01-01", 100),
		pt("2023-07-01", 110),
		pt("2024-01-01", 121),
	}
	got := TrailingReturnsFor(series, nil)
	require.Len(t, got, len(TrailingPeriods))

	assert.InDelta(t, 10, got[Period6M].Value, 1e-9)
	assert.InDelta(t, 21, got[Period1Y].Value, 1e-9)
	assert.InDelta(t, 21, got[PeriodSinceInception].Value, 1e-9)
	// shorter windows fall back to the July observation
	assert.InDelta(t, 10, got[Period1M].Value, 1e-9)
	assert.InDelta(t, 10, got[Period3M].Value, 1e-9)
	assert.InDelta(t, 10, got[Period1W].Value, 1e-9)
	assert.InDelta(t, 10, got[Period10D].Value, 1e-9)
	for _, label := range TrailingPeriods {
		assert.True(t, got[label].Valid, label)
	}
}

func TestTrailingReturnsUnavailableBeforeInception(t *testing.T) {
	series := []Point{
		pt("2023-12-20", 100),
		pt("2024-01-02", 102),
	}
	got := TrailingReturnsFor(series, nil)

	assert.True(t, got[Period1W].Valid)
	assert.InDelta(t, 2, got[Period1W].Value, 1e-9)
	assert.False(t, got[Period10D].Valid)
	assert.False(t, got[Period1M].Valid)
	assert.False(t, got[Period1Y].Valid)
	assert.Equal(t, Unavailable, got[Period6M])
	assert.True(t, got[PeriodSinceInception].Valid)
}

func TestTrailingReturnsMonthEnd(t *testing.T) {
	series := []Point{
		pt("2024-01-31", 100),
		pt("2024-02-28", 90), // not month end in a leap year
		pt("2024-02-29", 105),
		pt("2024-03-28", 106),
		pt("2024-03-31", 110),
	}
	got := TrailingReturnsFor(series, nil)
	// 31 March minus one month lands on 29 February
	assert.InDelta(t, (110.0/105-1)*100, got[Period1M].Value, 1e-9)
}

func TestSinceInceptionConvention(t *testing.T) {
	t.Run("just under a year is absolute", func(t *testing.T) {
		series := []Point{pt("2023-01-01", 100), pt("2023-12-30", 121)}
		got := TrailingReturnsFor(series, nil)
		assert.InDelta(t, 21, got[PeriodSinceInception].Value, 1e-9)
	})
	t.Run("over a year is annualized", func(t *testing.T) {
		series := []Point{pt("2020-01-01", 100), pt("2022-01-01", 121)}
		got := TrailingReturnsFor(series, nil)
		years := 731 / 365.25
		want := (math.Pow(1.21, 1/years) - 1) * 100
		assert.InDelta(t, want, got[PeriodSinceInception].Value, 1e-9)
		assert.Less(t, got[PeriodSinceInception].Value, 10.0)
	})
	t.Run("twelve months and a day is annualized", func(t *testing.T) {
		series := []Point{pt("2022-12-31", 100), pt("2024-01-01", 150)}
		got := TrailingReturnsFor(series, nil)
		years := 366 / 365.25
		want := (math.Pow(1.5, 1/years) - 1) * 100
		assert.InDelta(t, want, got[PeriodSinceInception].Value, 1e-9)
		assert.Less(t, got[PeriodSinceInception].Value, 50.0)
	})
}

func TestSinceInceptionWithExplicitDate(t *testing.T) {
	series := []Point{
		pt("2023-01-01", 100),
		pt("2023-07-01", 110),
		pt("2024-01-01", 121),
	}
	inception := day("2023-07-15")
	got := TrailingReturnsFor(series, &inception)
	assert.InDelta(t, 10, got[PeriodSinceInception].Value, 1e-9)

	early := day("2020-01-01")
	got = TrailingReturnsFor(series, &early)
	assert.InDelta(t, 21, got[PeriodSinceInception].Value, 1e-9)
}

func TestTrailingReturnsDegenerate(t *testing.T) {
	got := TrailingReturnsFor([]Point{pt("2024-01-01", 100)}, nil)
	for _, label := range TrailingPeriods {
		assert.False(t, got[label].Valid, label)
	}

	got = TrailingReturnsFor([]Point{pt("2023-01-02", 0), pt("2024-01-02", 10)}, nil)
	assert.False(t, got[Period1Y].Valid)
	assert.False(t, got[PeriodSinceInception].Valid)

	assert.Len(t, TrailingReturnsFor(nil, nil), len(TrailingPeriods))
}

func TestGrowth(t *testing.T) {
	assert.Equal(t, Available(0), growth(100, 100, 0))
	assert.InDelta(t, -50, growth(100, 50, 0).Value, 1e-9)
	assert.InDelta(t, 10, growth(100, 121, 2).Value, 1e-9)
	assert.Equal(t, Unavailable, growth(0, 121, 2))
	assert.Equal(t, Unavailable, growth(100, -1, 2))
}
