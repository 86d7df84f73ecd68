package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		value float64
	}{
		{name: "rounds half up at the boundary", value: 1234567.005, want: "1,234,567.01"},
		{name: "zero", value: 0, want: "0.00"},
		{name: "below a thousand", value: 999.999, want: "1,000.00"},
		{name: "exact thousand", value: 1000, want: "1,000.00"},
		{name: "small fraction", value: 0.005, want: "0.01"},
		{name: "three digit integer", value: 123.4, want: "123.40"},
		{name: "millions", value: 25000000, want: "25,000,000.00"},
		{name: "rounds down", value: 10.004, want: "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Amount(tt.value))
		})
	}
}

// Negative values are outside the formatter's contract: statements show
// withdrawals and tax as magnitudes, so callers take the absolute value first.
// The sign is still kept rather than dropped.
func TestAmountNegativePrecondition(t *testing.T) {
	assert.Equal(t, "-42.10", Amount(-42.1))
	assert.Equal(t, "-1,500.00", Amount(-1500))
}

func TestWhole(t *testing.T) {
	assert.Equal(t, "1,235.00", Whole(1234.56))
	assert.Equal(t, "1,234.00", Whole(1234.49))
	assert.Equal(t, "3.00", Whole(2.5))
}

func TestPlaces(t *testing.T) {
	assert.Equal(t, "1,234.5679", Places(1234.56789, 4))
	assert.Equal(t, "12", Places(12.4, 0))
	assert.Equal(t, "1,000", Places(999.5, 0))
}

func TestDecimal(t *testing.T) {
	d := decimal.RequireFromString("9876543.215")
	assert.Equal(t, "9,876,543.22", Decimal(d))
	assert.Equal(t, "0.00", Decimal(decimal.Zero))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "2024-03-09", Date(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)))
}

func TestDecimalPlaces(t *testing.T) {
	assert.Equal(t, "12,345.1235", DecimalPlaces(decimal.RequireFromString("12345.12345"), 4))
	assert.Equal(t, "-0.50", DecimalPlaces(decimal.RequireFromString("-0.499"), 2))
}
