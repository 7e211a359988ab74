package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/trainer-billing/internal/domain"
	customError "github.com/segyhp/trainer-billing/pkg/errors"
)

func reconcilePolicy() PricingPolicy {
	return PricingPolicy{
		ToleranceRate:     decimal.RequireFromString("0.01"),
		ToleranceAbsolute: 1000,
	}
}

func TestPricingPolicy_Tolerance(t *testing.T) {
	p := reconcilePolicy()

	assert.Equal(t, int64(10000), p.Tolerance(1000000))
	assert.Equal(t, int64(1000), p.Tolerance(50000))
	assert.Equal(t, int64(1000), p.Tolerance(0))
}

func TestPricingPolicy_Reconcile(t *testing.T) {
	tests := []struct {
		name     string
		strict   bool
		gross    int64
		sessions int
		price    int64
		expected domain.PricingResult
		errCode  string
	}{
		{
			name:     "exact product is kept",
			gross:    1000000,
			sessions: 10,
			price:    100000,
			expected: domain.PricingResult{TotalSessions: 10, SessionPrice: 100000},
		},
		{
			name:     "drift within one percent is kept",
			gross:    1000000,
			sessions: 3,
			price:    330000,
			expected: domain.PricingResult{TotalSessions: 3, SessionPrice: 330000},
		},
		{
			name:     "drift within the absolute threshold is kept",
			gross:    50000,
			sessions: 3,
			price:    16500,
			expected: domain.PricingResult{TotalSessions: 3, SessionPrice: 16500},
		},
		{
			name:     "ten percent drift is adjusted",
			gross:    1000000,
			sessions: 9,
			price:    100000,
			expected: domain.PricingResult{TotalSessions: 9, SessionPrice: 111111, Adjusted: true},
		},
		{
			name:     "strict policy rejects drift",
			strict:   true,
			gross:    1000000,
			sessions: 9,
			price:    100000,
			errCode:  customError.ErrCodeInconsistentPricing,
		},
		{
			name:     "strict policy keeps values within tolerance",
			strict:   true,
			gross:    1000000,
			sessions: 10,
			price:    99500,
			expected: domain.PricingResult{TotalSessions: 10, SessionPrice: 99500},
		},
		{
			name:     "strict policy rejects a product past int64",
			strict:   true,
			gross:    1000000,
			sessions: 4,
			price:    1<<62 + 250000,
			errCode:  customError.ErrCodeInconsistentPricing,
		},
		{
			name:     "product past int64 is adjusted",
			gross:    1000000,
			sessions: 4,
			price:    1<<62 + 250000,
			expected: domain.PricingResult{TotalSessions: 4, SessionPrice: 250000, Adjusted: true},
		},
		{
			name:     "more sessions than a package can hold",
			gross:    1000000,
			sessions: domain.MaxTotalSessions + 1,
			price:    1,
			errCode:  customError.ErrCodeInvalidAmount,
		},
		{
			name:     "zero sessions",
			gross:    1000000,
			sessions: 0,
			price:    100000,
			errCode:  customError.ErrCodeInvalidAmount,
		},
		{
			name:     "negative gross",
			gross:    -1,
			sessions: 1,
			price:    1,
			errCode:  customError.ErrCodeInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := reconcilePolicy()
			p.Strict = tt.strict

			got, err := p.Reconcile(tt.gross, tt.sessions, tt.price)

			if tt.errCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errCode, customError.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPricingPolicy_Derive(t *testing.T) {
	tests := []struct {
		name     string
		gross    int64
		sessions *int
		price    *int64
		expected domain.PricingResult
		errCode  string
	}{
		{
			name:     "price from sessions",
			gross:    1000000,
			sessions: intPtr(3),
			expected: domain.PricingResult{TotalSessions: 3, SessionPrice: 333333},
		},
		{
			name:     "price rounds half up",
			gross:    5,
			sessions: intPtr(2),
			expected: domain.PricingResult{TotalSessions: 2, SessionPrice: 3},
		},
		{
			name:     "sessions from price",
			gross:    1000000,
			price:    int64Ptr(120000),
			expected: domain.PricingResult{TotalSessions: 8, SessionPrice: 120000},
		},
		{
			name:     "at least one session",
			gross:    10000,
			price:    int64Ptr(120000),
			expected: domain.PricingResult{TotalSessions: 1, SessionPrice: 120000},
		},
		{
			name:     "both are reconciled",
			gross:    1000000,
			sessions: intPtr(9),
			price:    int64Ptr(100000),
			expected: domain.PricingResult{TotalSessions: 9, SessionPrice: 111111, Adjusted: true},
		},
		{
			name:     "both with a product past int64",
			gross:    1000000,
			sessions: intPtr(4),
			price:    int64Ptr(1<<62 + 250000),
			expected: domain.PricingResult{TotalSessions: 4, SessionPrice: 250000, Adjusted: true},
		},
		{
			name:    "derived session count beyond package capacity",
			gross:   1 << 40,
			price:   int64Ptr(1),
			errCode: customError.ErrCodeInvalidAmount,
		},
		{
			name:    "neither",
			gross:   1000000,
			errCode: customError.ErrCodeMissingPricing,
		},
		{
			name:    "zero price",
			gross:   1000000,
			price:   int64Ptr(0),
			errCode: customError.ErrCodeInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reconcilePolicy().Derive(tt.gross, tt.sessions, tt.price)

			if tt.errCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.errCode, customError.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPricingPolicy_StrictRejectsOverflowingPair(t *testing.T) {
	p := reconcilePolicy()
	p.Strict = true

	_, err := p.Derive(1000000, intPtr(4), int64Ptr(1<<62+250000))

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInconsistentPricing))
}
