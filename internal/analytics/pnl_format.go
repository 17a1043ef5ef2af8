package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"investorportal/internal/calendar"
)

// QuarterlyPnl is one year of the quarterly P&L table. Percent and Cash are
// keyed "q1".."q4" plus "total" for the whole year; quarters without any
// observation are absent. YearCash is the year's net capital in/out.
type QuarterlyPnl struct {
	Percent  map[string]string `json:"percent"`
	Cash     map[string]string `json:"cash"`
	YearCash float64           `json:"yearCash"`
}

// MonthPnl is one month of the monthly P&L table.
type MonthPnl struct {
	Percent      string `json:"percent"`
	Cash         string `json:"cash"`
	CapitalInOut string `json:"capitalInOut"`
}

// MonthlyPnl is one year of the monthly P&L table, keyed by month name.
type MonthlyPnl struct {
	Months            map[string]MonthPnl `json:"months"`
	TotalPercent      float64             `json:"totalPercent"`
	TotalCash         float64             `json:"totalCash"`
	TotalCapitalInOut float64             `json:"totalCapitalInOut"`
}

// TotalKey is the key of the whole-year entry in QuarterlyPnl maps.
const TotalKey = "total"

// FormatPnl renders the P&L result into its presentation tables. This is the
// only place figures are rounded to two decimals.
func FormatPnl(res PnlResult) (map[int]QuarterlyPnl, map[int]MonthlyPnl) {
	quarterly := make(map[int]QuarterlyPnl, len(res.Years))
	monthly := make(map[int]MonthlyPnl, len(res.Years))

	for year, total := range res.Years {
		q := QuarterlyPnl{
			Percent:  map[string]string{TotalKey: Fixed2(total.Percent)},
			Cash:     map[string]string{TotalKey: Fixed2(total.Cash)},
			YearCash: Round2(total.CapitalInOut),
		}
		for _, f := range res.Quarters[year] {
			key := calendar.Quarterly.Key(f.Start)
			q.Percent[key] = Fixed2(f.Percent)
			q.Cash[key] = Fixed2(f.Cash)
		}
		quarterly[year] = q

		m := MonthlyPnl{
			Months:            make(map[string]MonthPnl, len(res.Months[year])),
			TotalPercent:      Round2(total.Percent),
			TotalCash:         Round2(total.Cash),
			TotalCapitalInOut: Round2(total.CapitalInOut),
		}
		for _, f := range res.Months[year] {
			m.Months[calendar.Monthly.Key(f.Start)] = MonthPnl{
				Percent:      Fixed2(f.Percent),
				Cash:         Fixed2(f.Cash),
				CapitalInOut: Fixed2(f.CapitalInOut),
			}
		}
		monthly[year] = m
	}
	return quarterly, monthly
}

// Fixed2 formats v with exactly two decimals, rounding half away from zero.
func Fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Round2 rounds v to two decimals, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
