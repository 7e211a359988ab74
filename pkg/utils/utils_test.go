package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDivRound(t *testing.T) {
	tests := []struct {
		name     string
		dividend int64
		divisor  int64
		expected int64
	}{
		{
			name:     "exact division",
			dividend: 1000000,
			divisor:  10,
			expected: 100000,
		},
		{
			name:     "rounds down below half",
			dividend: 1000000,
			divisor:  9,
			expected: 111111, // 111,111.11
		},
		{
			name:     "rounds half up",
			dividend: 5,
			divisor:  2,
			expected: 3,
		},
		{
			name:     "zero divisor",
			dividend: 100,
			divisor:  0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DivRound(tt.dividend, tt.divisor))
		})
	}
}

func TestMulRate(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		rate     decimal.Decimal
		expected int64
	}{
		{
			name:     "card fee on net before vat",
			amount:   909091,
			rate:     decimal.RequireFromString("0.035"),
			expected: 31818, // 31,818.185
		},
		{
			name:     "half rounds up",
			amount:   100,
			rate:     decimal.RequireFromString("0.035"),
			expected: 4, // 3.5
		},
		{
			name:     "zero rate",
			amount:   12345,
			rate:     decimal.Zero,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MulRate(tt.amount, tt.rate))
		})
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	ts := time.Date(2024, 3, 15, 18, 45, 12, 99, loc)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, loc), StartOfDay(ts))
}

func TestMaxInt64(t *testing.T) {
	assert.Equal(t, int64(10000), MaxInt64(10000, 1000))
	assert.Equal(t, int64(1000), MaxInt64(-5, 1000))
}
