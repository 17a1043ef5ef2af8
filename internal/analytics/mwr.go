package analytics

import (
	"math"
	"time"
)

type cashFlow struct {
	date   time.Time
	amount float64
}

// MoneyWeightedReturn returns the annualized internal rate of return of the
// investor's flows: the first value paid in, every later cash_in_out paid in
// (or taken out), and the last value received. Records must be sorted.
func MoneyWeightedReturn(records []ValuationRecord) Percent {
	if len(records) < 2 {
		return Unavailable
	}
	first, last := records[0], records[len(records)-1]
	if first.PortfolioValue <= 0 || !last.ReportDate.After(first.ReportDate) {
		return Unavailable
	}

	flows := []cashFlow{{first.ReportDate, -first.PortfolioValue}}
	for _, r := range records[1:] {
		if r.CashInOut != 0 {
			flows = append(flows, cashFlow{r.ReportDate, -r.CashInOut})
		}
	}
	flows = append(flows, cashFlow{last.ReportDate, last.PortfolioValue})

	rate, ok := xirr(flows)
	if !ok {
		return Unavailable
	}
	return Available(rate * 100)
}

// xirr solves the NPV of flows for zero with Newton's method, using
// act/365 year fractions from the first flow.
func xirr(flows []cashFlow) (float64, bool) {
	const (
		maxIterations = 100
		guess         = 0.1
	)
	scale := 0.0
	for _, f := range flows {
		scale = math.Max(scale, math.Abs(f.amount))
	}
	tolerance := 1e-9 * scale

	rate := guess
	for i := 0; i < maxIterations; i++ {
		f := 0.0  // NPV
		df := 0.0 // derivative of NPV
		for _, flow := range flows {
			t := flow.date.Sub(flows[0].date).Hours() / 24 / 365
			f += flow.amount / math.Pow(1+rate, t)
			df += -t * flow.amount / math.Pow(1+rate, t+1)
		}
		if math.Abs(f) < tolerance {
			return rate, true
		}
		if df == 0 || math.IsNaN(df) {
			return 0, false
		}
		rate -= f / df
		if rate <= -1 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return 0, false
		}
	}
	return 0, false
}
