// Package calendar holds the date arithmetic used by the analytics engine:
// day normalization, business-day and month lookbacks, and the detection of
// month/quarter/year boundaries between two consecutive observations.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the ISO-8601 layout used for dates on the wire.
const DateFormat = "2006-01-02"

// DaysPerYear is the average year length used to convert day spans to years.
const DaysPerYear = 365.25

// Day returns t as a calendar date: midnight UTC of the same year/month/day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date. Out of range values are normalized.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO date ("2024-01-31") or an RFC3339 timestamp and
// returns the calendar date it falls on.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q want format %q", s, DateFormat)
	}
	return Day(t), nil
}

// Format renders a date in DateFormat.
func Format(t time.Time) string { return t.Format(DateFormat) }

// LastDayOfMonth returns the last calendar day of the given month.
func LastDayOfMonth(year int, month time.Month) time.Time {
	// day 0 of the next month is the last day of this one
	return Date(year, month+1, 0)
}

// IsMonthEnd reports whether t is the last calendar day of its month.
func IsMonthEnd(t time.Time) bool {
	return t.Day() == LastDayOfMonth(t.Year(), t.Month()).Day()
}

// IsBusinessDay reports whether t falls on Monday to Friday.
// Market holidays are not taken into account.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// SubtractBusinessDays walks back from t one calendar day at a time until n
// weekdays have been counted, and returns the day it stopped on.
func SubtractBusinessDays(t time.Time, n int) time.Time {
	d := Day(t)
	for counted := 0; counted < n; {
		d = d.AddDate(0, 0, -1)
		if IsBusinessDay(d) {
			counted++
		}
	}
	return d
}

// SubtractMonths moves t back n calendar months.
//
// A month-end date lands on the last day of the target month, so month-end
// observations always compare against month-end observations. Any other date
// keeps its day of month and relies on time.AddDate normalization when the
// target month is shorter (30 March minus one month is 1 or 2 March).
func SubtractMonths(t time.Time, n int) time.Time {
	d := Day(t)
	if IsMonthEnd(d) {
		return LastDayOfMonth(d.Year(), d.Month()-time.Month(n))
	}
	return d.AddDate(0, -n, 0)
}

// Quarter returns the calendar quarter (1-4) of t.
func Quarter(t time.Time) int { return (int(t.Month())-1)/3 + 1 }

// YearsBetween returns the span from a to b in years of DaysPerYear days.
func YearsBetween(a, b time.Time) float64 {
	days := Day(b).Sub(Day(a)).Hours() / 24
	return days / DaysPerYear
}

// Boundary tells which calendar periods start with cur when the previous
// observation was prev.
type Boundary struct {
	Year, Quarter, Month bool
}

// Boundaries compares two consecutive observation dates. A new year implies
// a new quarter, which implies a new month.
func Boundaries(prev, cur time.Time) Boundary {
	var b Boundary
	b.Year = cur.Year() != prev.Year()
	b.Quarter = b.Year || Quarter(cur) != Quarter(prev)
	b.Month = b.Quarter || cur.Month() != prev.Month()
	return b
}
