package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundHalfUp rounds to the nearest whole currency unit, halves away from zero.
// Every amount passed here is non-negative, so this is round-half-up.
func RoundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// DivRound divides two whole amounts and rounds the quotient half-up.
// A zero divisor yields zero.
func DivRound(dividend, divisor int64) int64 {
	if divisor == 0 {
		return 0
	}
	return RoundHalfUp(decimal.NewFromInt(dividend).Div(decimal.NewFromInt(divisor)))
}

// MulRate multiplies a whole amount by a rate and rounds half-up.
func MulRate(amount int64, rate decimal.Decimal) int64 {
	return RoundHalfUp(decimal.NewFromInt(amount).Mul(rate))
}

// MaxInt64 returns the larger of a and b.
func MaxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
