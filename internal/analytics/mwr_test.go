package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoneyWeightedReturn(t *testing.T) {
	records := []ValuationRecord{
		val("2023-01-01", 1.0, 100, 0),
		val("2024-01-01", 1.1, 110, 0),
	}
	got := MoneyWeightedReturn(records)
	assert.True(t, got.Valid)
	assert.InDelta(t, 10, got.Value, 1e-6)
}

func TestMoneyWeightedReturnWithDeposit(t *testing.T) {
	// a flat first half, then the deposit joins for a 5% second half
	records := []ValuationRecord{
		val("2023-01-01", 1.0, 100, 0),
		val("2023-07-02", 1.0, 200, 100),
		val("2024-01-01", 1.1, 210, 0),
	}
	got := MoneyWeightedReturn(records)
	assert.True(t, got.Valid)
	assert.Greater(t, got.Value, 0.0)
	assert.Less(t, got.Value, 10.0)
}

func TestMoneyWeightedReturnUnavailable(t *testing.T) {
	assert.Equal(t, Unavailable, MoneyWeightedReturn(nil))
	assert.Equal(t, Unavailable, MoneyWeightedReturn([]ValuationRecord{val("2023-01-01", 1, 100, 0)}))
	assert.Equal(t, Unavailable, MoneyWeightedReturn([]ValuationRecord{
		val("2023-01-01", 1, 0, 0),
		val("2024-01-01", 1, 100, 0),
	}))
}
