package fee

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/trainer-billing/internal/domain"
	customError "github.com/segyhp/trainer-billing/pkg/errors"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		gross    int64
		expected domain.FeeBreakdown
	}{
		{
			name:     "ten session package",
			gross:    1000000,
			expected: domain.FeeBreakdown{Gross: 1000000, VAT: 90909, CardFee: 31818, Net: 877273},
		},
		{
			name:     "top-up payment",
			gross:    100000,
			expected: domain.FeeBreakdown{Gross: 100000, VAT: 9091, CardFee: 3182, Net: 87727},
		},
		{
			name:     "zero amount",
			gross:    0,
			expected: domain.FeeBreakdown{},
		},
		{
			name:     "one won",
			gross:    1,
			expected: domain.FeeBreakdown{Gross: 1, VAT: 0, CardFee: 0, Net: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.gross, domain.DefaultFeeRates())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.gross, got.Sum())
		})
	}
}

func TestSplit_Errors(t *testing.T) {
	tests := []struct {
		name     string
		gross    int64
		rates    domain.FeeRates
		sentinel error
		code     string
	}{
		{
			name:     "negative amount",
			gross:    -1,
			rates:    domain.DefaultFeeRates(),
			sentinel: customError.ErrInvalidAmount,
			code:     customError.ErrCodeInvalidAmount,
		},
		{
			name:  "exclusive method",
			gross: 1000,
			rates: domain.FeeRates{
				VATRate:     decimal.RequireFromString("0.10"),
				CardFeeRate: decimal.RequireFromString("0.035"),
				Method:      "exclusive",
			},
			sentinel: customError.ErrUnsupportedMethod,
			code:     customError.ErrCodeUnsupportedMethod,
		},
		{
			name:  "vat rate of one",
			gross: 1000,
			rates: domain.FeeRates{
				VATRate:     decimal.NewFromInt(1),
				CardFeeRate: decimal.Zero,
				Method:      domain.MethodInclusive,
			},
			sentinel: customError.ErrInvalidRate,
			code:     customError.ErrCodeInvalidRate,
		},
		{
			name:  "negative card fee rate",
			gross: 1000,
			rates: domain.FeeRates{
				VATRate:     decimal.Zero,
				CardFeeRate: decimal.RequireFromString("-0.01"),
				Method:      domain.MethodInclusive,
			},
			sentinel: customError.ErrInvalidRate,
			code:     customError.ErrCodeInvalidRate,
		},
		{
			name:  "card fee rate finer than stored scale",
			gross: 1000000,
			rates: domain.FeeRates{
				VATRate:     decimal.RequireFromString("0.10"),
				CardFeeRate: decimal.RequireFromString("0.03456"),
				Method:      domain.MethodInclusive,
			},
			sentinel: customError.ErrInvalidRate,
			code:     customError.ErrCodeInvalidRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.gross, tt.rates)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Equal(t, tt.code, customError.Code(err))
		})
	}
}

func TestSplit_ExactnessAcrossRates(t *testing.T) {
	rateSets := []domain.FeeRates{
		domain.DefaultFeeRates(),
		{VATRate: decimal.Zero, CardFeeRate: decimal.Zero, Method: domain.MethodInclusive},
		{VATRate: decimal.RequireFromString("0.2"), CardFeeRate: decimal.RequireFromString("0.029"), Method: domain.MethodInclusive},
		{VATRate: decimal.RequireFromString("0.07"), CardFeeRate: decimal.RequireFromString("0.5"), Method: domain.MethodInclusive},
	}

	rng := rand.New(rand.NewSource(42))
	for _, rates := range rateSets {
		for i := 0; i < 2000; i++ {
			gross := rng.Int63n(50_000_000)
			got, err := Split(gross, rates)
			require.NoError(t, err)
			assert.Equal(t, gross, got.Sum(), "gross %d rates %+v", gross, rates)
			assert.GreaterOrEqual(t, got.VAT, int64(0))
			assert.GreaterOrEqual(t, got.CardFee, int64(0))
			assert.GreaterOrEqual(t, got.Net, int64(0))
		}
	}
}

func TestSplit_Monotonic(t *testing.T) {
	rates := domain.DefaultFeeRates()

	prev, err := Split(0, rates)
	require.NoError(t, err)
	for gross := int64(1); gross <= 30000; gross++ {
		got, err := Split(gross, rates)
		require.NoError(t, err)
		if got.Net < prev.Net {
			t.Fatalf("net decreased from %d (gross %d) to %d (gross %d)", prev.Net, gross-1, got.Net, gross)
		}
		prev = got
	}
}

func TestCalculator_Deterministic(t *testing.T) {
	calc := NewCalculator(domain.DefaultFeeRates())

	first, err := calc.Calculate(1234567)
	require.NoError(t, err)
	second, err := calc.CalculateWithRates(1234567, calc.Defaults())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSplit_TrailingZerosWithinScale(t *testing.T) {
	rates := domain.FeeRates{
		VATRate:     decimal.RequireFromString("0.100000"),
		CardFeeRate: decimal.RequireFromString("0.03500"),
		Method:      domain.MethodInclusive,
	}

	got, err := Split(1000000, rates)
	require.NoError(t, err)
	assert.Equal(t, domain.FeeBreakdown{Gross: 1000000, VAT: 90909, CardFee: 31818, Net: 877273}, got)
}
