package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// Period is a calendar granularity used for P&L buckets.
type Period int

const (
	Monthly Period = iota
	Quarterly
	Yearly
)

// Starts reports whether b opens a new period of granularity p.
func (b Boundary) Starts(p Period) bool {
	switch p {
	case Yearly:
		return b.Year
	case Quarterly:
		return b.Quarter
	default:
		return b.Month
	}
}

// Key returns the bucket label of t for period p: "2024", "q1" or "January".
// Quarter and month keys are scoped to the year the caller groups them under.
func (p Period) Key(t time.Time) string {
	switch p {
	case Yearly:
		return strconv.Itoa(t.Year())
	case Quarterly:
		return fmt.Sprintf("q%d", Quarter(t))
	default:
		return t.Month().String()
	}
}
