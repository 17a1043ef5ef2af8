package analytics

import (
	"time"

	"investorportal/internal/calendar"
)

// PnlFigure is the profit and loss of one calendar period.
type PnlFigure struct {
	Start, End   time.Time // first and last observation of the period
	Percent      float64   // NAV change in percent
	Cash         float64   // value change not explained by capital flows
	CapitalInOut float64   // net capital booked after the start observation
	Degenerate   bool      // start NAV was not positive, Percent is 0
}

// PnlResult holds the P&L of every month, quarter and year seen in a history.
// Months and quarters are grouped under the year they belong to.
type PnlResult struct {
	Years    map[int]PnlFigure
	Quarters map[int]map[int]PnlFigure
	Months   map[int]map[time.Month]PnlFigure
}

// periodState is the running state of the currently open period.
type periodState struct {
	start      time.Time
	startNav   float64
	startValue float64
	cashSum    float64
}

func (s *periodState) reset(r ValuationRecord) {
	*s = periodState{start: r.ReportDate, startNav: r.NAV, startValue: r.PortfolioValue}
}

// finalize closes the period with end as its last observation.
func (s *periodState) finalize(end ValuationRecord) PnlFigure {
	f := PnlFigure{
		Start:        s.start,
		End:          end.ReportDate,
		Cash:         end.PortfolioValue - s.startValue - s.cashSum,
		CapitalInOut: s.cashSum,
	}
	if s.startNav <= 0 {
		f.Degenerate = true
		return f
	}
	f.Percent = (end.NAV/s.startNav - 1) * 100
	return f
}

// AggregatePnl computes monthly, quarterly and yearly P&L in a single pass
// over sorted records.
//
// Each period starts at its first record and ends at its last one. Cash
// flows booked on later records of the period are removed from the value
// change; the flow of the start record is already part of its value. A
// period is closed when the next record falls in a different period, and the
// periods still open after the last record are closed on it.
func AggregatePnl(records []ValuationRecord) PnlResult {
	res := PnlResult{
		Years:    map[int]PnlFigure{},
		Quarters: map[int]map[int]PnlFigure{},
		Months:   map[int]map[time.Month]PnlFigure{},
	}
	if len(records) == 0 {
		return res
	}

	levels := []*pnlLevel{
		{period: calendar.Yearly},
		{period: calendar.Quarterly},
		{period: calendar.Monthly},
	}
	for _, l := range levels {
		l.state.reset(records[0])
	}

	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		b := calendar.Boundaries(prev.ReportDate, cur.ReportDate)

		for _, l := range levels {
			if b.Starts(l.period) {
				res.add(l.period, l.state.finalize(prev))
				l.state.reset(cur)
			} else {
				l.state.cashSum += cur.CashInOut
			}
		}
	}

	last := records[len(records)-1]
	for _, l := range levels {
		res.add(l.period, l.state.finalize(last))
	}
	return res
}

type pnlLevel struct {
	period calendar.Period
	state  periodState
}

func (r PnlResult) add(p calendar.Period, f PnlFigure) {
	y := f.Start.Year()
	switch p {
	case calendar.Yearly:
		r.Years[y] = f
	case calendar.Quarterly:
		if r.Quarters[y] == nil {
			r.Quarters[y] = map[int]PnlFigure{}
		}
		r.Quarters[y][calendar.Quarter(f.Start)] = f
	default:
		if r.Months[y] == nil {
			r.Months[y] = map[time.Month]PnlFigure{}
		}
		r.Months[y][f.Start.Month()] = f
	}
}
