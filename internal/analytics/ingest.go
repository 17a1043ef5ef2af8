package analytics

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"investorportal/internal/calendar"
)

// ErrInvalidRecord is returned when a raw record cannot become a typed one.
var ErrInvalidRecord = errors.New("invalid record")

var validate = validator.New()

// RawValuation is a valuation as received from the history feed. Numbers may
// be JSON numbers or decimal strings.
type RawValuation struct {
	ReportDate     string              `json:"report_date" validate:"required"`
	NAV            decimal.NullDecimal `json:"nav"`
	PortfolioValue decimal.NullDecimal `json:"portfolio_value"`
	CashInOut      decimal.NullDecimal `json:"cash_in_out"`
}

// RawBenchmark is a benchmark observation as received from the index feed.
type RawBenchmark struct {
	Date  string              `json:"date" validate:"required"`
	Value decimal.NullDecimal `json:"value"`
}

// Record validates r and converts it. NAV and portfolio value are required
// and must not be negative; a missing cash_in_out means no flow.
func (r RawValuation) Record() (ValuationRecord, error) {
	if err := validate.Struct(r); err != nil {
		return ValuationRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	on, err := calendar.ParseDate(r.ReportDate)
	if err != nil {
		return ValuationRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if !r.NAV.Valid {
		return ValuationRecord{}, fmt.Errorf("%w: nav is required", ErrInvalidRecord)
	}
	if !r.PortfolioValue.Valid {
		return ValuationRecord{}, fmt.Errorf("%w: portfolio_value is required", ErrInvalidRecord)
	}
	if r.NAV.Decimal.IsNegative() {
		return ValuationRecord{}, fmt.Errorf("%w: nav %s is negative", ErrInvalidRecord, r.NAV.Decimal)
	}
	if r.PortfolioValue.Decimal.IsNegative() {
		return ValuationRecord{}, fmt.Errorf("%w: portfolio_value %s is negative", ErrInvalidRecord, r.PortfolioValue.Decimal)
	}
	rec := ValuationRecord{
		ReportDate:     on,
		NAV:            r.NAV.Decimal.InexactFloat64(),
		PortfolioValue: r.PortfolioValue.Decimal.InexactFloat64(),
	}
	if r.CashInOut.Valid {
		rec.CashInOut = r.CashInOut.Decimal.InexactFloat64()
	}
	return rec, nil
}

// Record validates b and converts it.
func (b RawBenchmark) Record() (BenchmarkRecord, error) {
	if err := validate.Struct(b); err != nil {
		return BenchmarkRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	on, err := calendar.ParseDate(b.Date)
	if err != nil {
		return BenchmarkRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if !b.Value.Valid {
		return BenchmarkRecord{}, fmt.Errorf("%w: value is required", ErrInvalidRecord)
	}
	return BenchmarkRecord{Date: on, Value: b.Value.Decimal.InexactFloat64()}, nil
}

// ParseValuations converts a raw history and returns it sorted and
// de-duplicated. The first invalid record aborts the conversion.
func ParseValuations(raw []RawValuation) ([]ValuationRecord, error) {
	out := make([]ValuationRecord, 0, len(raw))
	for i, r := range raw {
		rec, err := r.Record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return SortValuations(out), nil
}

// ParseBenchmark converts a raw benchmark series and returns it sorted and
// de-duplicated.
func ParseBenchmark(raw []RawBenchmark) ([]BenchmarkRecord, error) {
	out := make([]BenchmarkRecord, 0, len(raw))
	for i, r := range raw {
		rec, err := r.Record()
		if err != nil {
			return nil, fmt.Errorf("benchmark record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return SortBenchmark(out), nil
}
