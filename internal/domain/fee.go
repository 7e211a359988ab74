package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CalculationMethod describes how fees relate to the gross figure.
type CalculationMethod string

// MethodInclusive embeds VAT and card fee in the gross amount.
const MethodInclusive CalculationMethod = "inclusive"

// RateScale is the number of decimal places a stored rate keeps.
const RateScale int32 = 4

// FitsRateScale reports whether rate survives storage at RateScale places unchanged.
func FitsRateScale(rate decimal.Decimal) bool {
	return rate.Equal(rate.Round(RateScale))
}

// FeeRates is the rate set used for a single fee calculation.
type FeeRates struct {
	VATRate     decimal.Decimal   `json:"vat_rate"`
	CardFeeRate decimal.Decimal   `json:"card_fee_rate"`
	Method      CalculationMethod `json:"method"`
}

// DefaultFeeRates returns 10% VAT, 3.5% card fee, inclusive.
func DefaultFeeRates() FeeRates {
	return FeeRates{
		VATRate:     decimal.RequireFromString("0.10"),
		CardFeeRate: decimal.RequireFromString("0.035"),
		Method:      MethodInclusive,
	}
}

// Value stores the rate set as JSON.
func (r FeeRates) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the rate set from a JSON column.
func (r *FeeRates) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = FeeRates{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into FeeRates", src)
	}
}

// FeeBreakdown is the result of splitting a gross amount.
// VAT + CardFee + Net always equals Gross.
type FeeBreakdown struct {
	Gross   int64 `json:"gross_amount"`
	VAT     int64 `json:"vat_amount"`
	CardFee int64 `json:"card_fee_amount"`
	Net     int64 `json:"net_amount"`
}

// Sum returns VAT + CardFee + Net.
func (b FeeBreakdown) Sum() int64 {
	return b.VAT + b.CardFee + b.Net
}
