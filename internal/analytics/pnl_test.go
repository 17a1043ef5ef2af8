package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatePnlNetOfCashFlows(t *testing.T) {
	records := []ValuationRecord{
		val("2024-01-01", 1.00, 1_000_000, 0),
		val("2024-01-15", 1.01, 1_030_000, 20_000),
		val("2024-01-30", 1.03, 1_050_000, 0),
	}
	res := AggregatePnl(records)

	jan := res.Months[2024][time.January]
	assert.InDelta(t, 30_000, jan.Cash, 1e-6)
	assert.InDelta(t, 3, jan.Percent, 1e-9)
	assert.InDelta(t, 20_000, jan.CapitalInOut, 1e-9)
	assert.Equal(t, day("2024-01-01"), jan.Start)
	assert.Equal(t, day("2024-01-30"), jan.End)

	quarterly, monthly := FormatPnl(res)
	assert.Equal(t, "30000.00", monthly[2024].Months["January"].Cash)
	assert.Equal(t, "3.00", monthly[2024].Months["January"].Percent)
	assert.Equal(t, "20000.00", monthly[2024].Months["January"].CapitalInOut)
	assert.Equal(t, "30000.00", quarterly[2024].Cash["q1"])
	assert.Equal(t, "30000.00", quarterly[2024].Cash[TotalKey])
	assert.Equal(t, 20000.0, quarterly[2024].YearCash)
}

func TestAggregatePnlReconciles(t *testing.T) {
	records := []ValuationRecord{
		val("2023-11-15", 10.0, 10_000, 10_000),
		val("2023-11-30", 10.2, 10_200, 0),
		val("2023-12-14", 10.1, 15_150, 5_000),
		val("2023-12-29", 10.4, 15_600, 0),
		val("2024-01-02", 10.5, 15_750, 0),
		val("2024-01-19", 10.3, 13_390, -2_060),
		val("2024-02-09", 10.9, 14_170, 0),
		val("2024-04-05", 11.2, 17_560, 3_000),
		val("2024-04-30", 11.0, 17_250, 0),
	}
	res := AggregatePnl(records)
	require.Len(t, res.Years, 2)

	for year, f := range res.Years {
		start := recordOn(t, records, f.Start)
		end := recordOn(t, records, f.End)
		assert.InDelta(t, end.PortfolioValue-start.PortfolioValue, f.CapitalInOut+f.Cash, 1e-6, "year %d", year)
		assert.InDelta(t, (end.NAV/start.NAV-1)*100, f.Percent, 1e-9, "year %d", year)
	}

	y2024 := res.Years[2024]
	assert.Equal(t, day("2024-01-02"), y2024.Start)
	assert.Equal(t, day("2024-04-30"), y2024.End)
	assert.InDelta(t, 940, y2024.CapitalInOut, 1e-9)

	// a flow booked on the first record of a month is part of its start value
	assert.InDelta(t, 0, res.Months[2023][time.December].CapitalInOut, 1e-9)
	assert.InDelta(t, 5_000, res.Quarters[2023][4].CapitalInOut, 1e-9)
	assert.InDelta(t, 5_000, res.Years[2023].CapitalInOut, 1e-9)
	// the inception deposit is inside the first value
	assert.InDelta(t, 0, res.Months[2023][time.November].CapitalInOut, 1e-9)

	assert.Len(t, res.Quarters[2024], 2)
	assert.Len(t, res.Months[2024], 3)
}

func TestAggregatePnlYearTotalIsNotASum(t *testing.T) {
	records := []ValuationRecord{
		val("2024-03-28", 100, 1000, 0),
		val("2024-04-02", 105, 1050, 0),
		val("2024-06-28", 110.25, 1102.5, 0),
	}
	res := AggregatePnl(records)

	q1 := res.Quarters[2024][1]
	q2 := res.Quarters[2024][2]
	assert.InDelta(t, 0, q1.Percent, 1e-9)
	assert.InDelta(t, 5, q2.Percent, 1e-9)
	assert.InDelta(t, 10.25, res.Years[2024].Percent, 1e-9)
	assert.NotEqual(t, q1.Percent+q2.Percent, res.Years[2024].Percent)

	quarterly, monthly := FormatPnl(res)
	assert.Equal(t, map[string]string{"q1": "0.00", "q2": "5.00", TotalKey: "10.25"}, quarterly[2024].Percent)
	// each month holds a single observation
	assert.Len(t, monthly[2024].Months, 3)
	assert.Equal(t, "0.00", monthly[2024].Months["June"].Percent)
}

func TestAggregatePnlDegenerateFirstPeriod(t *testing.T) {
	records := []ValuationRecord{
		val("2024-01-03", 0, 0, 0),
		val("2024-01-20", 1, 500, 500),
		val("2024-02-01", 1.1, 550, 0),
	}
	res := AggregatePnl(records)

	jan := res.Months[2024][time.January]
	assert.True(t, jan.Degenerate)
	assert.Zero(t, jan.Percent)
	assert.True(t, res.Years[2024].Degenerate)

	feb := res.Months[2024][time.February]
	assert.False(t, feb.Degenerate)
	assert.Zero(t, feb.Percent)

	_, monthly := FormatPnl(res)
	assert.Equal(t, "0.00", monthly[2024].Months["January"].Percent)
}

func TestAggregatePnlEmpty(t *testing.T) {
	res := AggregatePnl(nil)
	assert.Empty(t, res.Years)
	assert.Empty(t, res.Quarters)
	assert.Empty(t, res.Months)

	quarterly, monthly := FormatPnl(res)
	assert.Empty(t, quarterly)
	assert.Empty(t, monthly)
}

func TestAggregatePnlSingleRecord(t *testing.T) {
	res := AggregatePnl([]ValuationRecord{val("2024-05-05", 10, 100, 100)})
	require.Contains(t, res.Years, 2024)
	assert.Zero(t, res.Years[2024].Cash)
	assert.Zero(t, res.Years[2024].Percent)
	assert.Contains(t, res.Quarters[2024], 2)
	assert.Contains(t, res.Months[2024], time.May)
}

func TestFixed2(t *testing.T) {
	assert.Equal(t, "2.50", Fixed2(2.5))
	assert.Equal(t, "1234.57", Fixed2(1234.567))
	assert.Equal(t, "-12.35", Fixed2(-12.345))
	assert.Equal(t, "0.00", Fixed2(-0.004))
	assert.Equal(t, "0.00", Fixed2(math.NaN()))
	assert.Equal(t, 1234.57, Round2(1234.567))
	assert.Equal(t, 0.0, Round2(math.Inf(1)))
}

func recordOn(t *testing.T, records []ValuationRecord, on time.Time) ValuationRecord {
	t.Helper()
	for _, r := range records {
		if r.ReportDate.Equal(on) {
			return r
		}
	}
	t.Fatalf("no record on %s", on)
	return ValuationRecord{}
}
