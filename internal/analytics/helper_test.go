package analytics

import (
	"time"

	"investorportal/internal/calendar"
)

// day parses an ISO date or panics.
func day(s string) time.Time {
	d, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func val(date string, nav, value, cash float64) ValuationRecord {
	return ValuationRecord{ReportDate: day(date), NAV: nav, PortfolioValue: value, CashInOut: cash}
}

func bench(date string, value float64) BenchmarkRecord {
	return BenchmarkRecord{Date: day(date), Value: value}
}

func pt(date string, value float64) Point {
	return Point{Date: day(date), Value: value}
}
