package scraper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"investorportal/internal/analytics"
	"investorportal/internal/calendar"
)

// Row is one history table row as text.
type Row struct {
	Date  string `json:"date"`
	Close string `json:"close"`
}

var dateLayouts = []string{
	calendar.DateFormat,
	"02/01/2006",
	"Jan 2, 2006",
	"Jan 02, 2006",
	"2 Jan 2006",
}

func parseRowDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLevel(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseRows converts scraped rows, skipping headers, dividend lines and
// anything else that is not a dated positive level.
func ParseRows(rows []Row) (records []analytics.BenchmarkRecord, skipped int) {
	for _, r := range rows {
		on, ok := parseRowDate(r.Date)
		if !ok {
			skipped++
			continue
		}
		level, ok := parseLevel(r.Close)
		if !ok {
			skipped++
			continue
		}
		records = append(records, analytics.BenchmarkRecord{Date: on, Value: level})
	}
	return records, skipped
}

// Between keeps the records dated within [from, to].
func Between(records []analytics.BenchmarkRecord, from, to time.Time) []analytics.BenchmarkRecord {
	from, to = calendar.Day(from), calendar.Day(to)
	out := records[:0:0]
	for _, r := range records {
		d := calendar.Day(r.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}
