package analytics

import (
	"math"
	"time"

	"investorportal/internal/calendar"
)

// Trailing period labels.
const (
	Period1W             = "1W"
	Period10D            = "10D"
	Period1M             = "1M"
	Period3M             = "3M"
	Period6M             = "6M"
	Period1Y             = "1Y"
	PeriodSinceInception = "Since Inception"
)

// TrailingPeriods lists the trailing period labels in display order.
var TrailingPeriods = []string{
	Period1W, Period10D, Period1M, Period3M, Period6M, Period1Y, PeriodSinceInception,
}

// TrailingReturns maps a period label to its return in percent.
type TrailingReturns map[string]Percent

type lookback struct {
	label        string
	businessDays int
	months       int
}

var lookbacks = []lookback{
	{label: Period1W, businessDays: 7},
	{label: Period10D, businessDays: 10},
	{label: Period1M, months: 1},
	{label: Period3M, months: 3},
	{label: Period6M, months: 6},
	{label: Period1Y, months: 12},
}

// TrailingReturnsFor computes the trailing returns of a sorted series, ending
// at its last point.
//
// Day windows walk back over weekdays and are always absolute. Month windows
// use SubtractMonths; they are absolute below twelve months and annualized
// from twelve months on. A window whose start predates the series is
// Unavailable. Since Inception starts at the point in force on inception
// (or the first point when inception is nil or predates the series) and is
// annualized once it spans at least a year.
//
// Compute passes the benchmark as aligned to the portfolio's dates, not the
// benchmark's own series, so both returns start and end on the same
// observation dates. When portfolio dates are sparse the benchmark return
// can therefore differ from one measured on its own daily levels.
func TrailingReturnsFor(series []Point, inception *time.Time) TrailingReturns {
	out := make(TrailingReturns, len(TrailingPeriods))
	for _, label := range TrailingPeriods {
		out[label] = Unavailable
	}
	if len(series) == 0 {
		return out
	}
	latest := series[len(series)-1]

	for _, lb := range lookbacks {
		var target time.Time
		if lb.businessDays > 0 {
			target = calendar.SubtractBusinessDays(latest.Date, lb.businessDays)
		} else {
			target = calendar.SubtractMonths(latest.Date, lb.months)
		}
		start, ok := pointAsOf(series, target)
		if !ok {
			continue
		}
		years := 0.0
		if lb.months >= 12 {
			years = float64(lb.months) / 12
		}
		out[lb.label] = growth(start.Value, latest.Value, years)
	}

	out[PeriodSinceInception] = sinceInception(series, inception)
	return out
}

func sinceInception(series []Point, inception *time.Time) Percent {
	if len(series) < 2 {
		return Unavailable
	}
	start := series[0]
	if inception != nil {
		if p, ok := pointAsOf(series, calendar.Day(*inception)); ok {
			start = p
		}
	}
	latest := series[len(series)-1]
	years := calendar.YearsBetween(start.Date, latest.Date)
	if years < 1 {
		years = 0
	}
	return growth(start.Value, latest.Value, years)
}

// growth returns the percent change from start to end. A positive years
// annualizes it as a compound annual growth rate.
func growth(start, end, years float64) Percent {
	if start <= 0 {
		return Unavailable
	}
	ratio := end / start
	if years <= 0 {
		return Available((ratio - 1) * 100)
	}
	if ratio < 0 {
		return Unavailable
	}
	return Available((math.Pow(ratio, 1/years) - 1) * 100)
}
