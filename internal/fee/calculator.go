// Package fee splits gross payments into VAT, card fee and net amounts.
package fee

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/trainer-billing/internal/domain"
	customError "github.com/segyhp/trainer-billing/pkg/errors"
	"github.com/segyhp/trainer-billing/pkg/utils"
)

// Calculator applies a configured default rate set.
type Calculator struct {
	defaults domain.FeeRates
}

func NewCalculator(defaults domain.FeeRates) *Calculator {
	return &Calculator{defaults: defaults}
}

// Defaults returns the rate set used by Calculate.
func (c *Calculator) Defaults() domain.FeeRates {
	return c.defaults
}

// Calculate splits gross using the default rates.
func (c *Calculator) Calculate(gross int64) (domain.FeeBreakdown, error) {
	return Split(gross, c.defaults)
}

// CalculateWithRates splits gross using rates stored elsewhere, e.g. on a package.
func (c *Calculator) CalculateWithRates(gross int64, rates domain.FeeRates) (domain.FeeBreakdown, error) {
	return Split(gross, rates)
}

// ValidateRates checks that a rate set can be used by Split. Rates finer
// than domain.RateScale are rejected so that the split persisted with a
// package can be repeated from its stored rates.
func ValidateRates(rates domain.FeeRates) error {
	if rates.Method != domain.MethodInclusive {
		return customError.WrapUnsupportedMethod(string(rates.Method))
	}
	if !validRate(rates.VATRate) {
		return customError.WrapInvalidRate("vat_rate", rates.VATRate.String())
	}
	if !validRate(rates.CardFeeRate) {
		return customError.WrapInvalidRate("card_fee_rate", rates.CardFeeRate.String())
	}
	return nil
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThan(decimal.NewFromInt(1)) && domain.FitsRateScale(rate)
}

// Split converts gross into its VAT, card fee and net parts under the
// inclusive method:
//
//	netBeforeVat = round(gross / (1 + vatRate))
//	vat          = gross - netBeforeVat
//	cardFee      = round(netBeforeVat * cardFeeRate)
//	net          = gross - vat - cardFee
//
// The parts always add up to gross.
func Split(gross int64, rates domain.FeeRates) (domain.FeeBreakdown, error) {
	if gross < 0 {
		return domain.FeeBreakdown{}, customError.WrapInvalidAmount(gross)
	}
	if err := ValidateRates(rates); err != nil {
		return domain.FeeBreakdown{}, err
	}

	netBeforeVat := utils.RoundHalfUp(decimal.NewFromInt(gross).Div(decimal.NewFromInt(1).Add(rates.VATRate)))
	vat := gross - netBeforeVat
	cardFee := utils.MulRate(netBeforeVat, rates.CardFeeRate)

	return domain.FeeBreakdown{
		Gross:   gross,
		VAT:     vat,
		CardFee: cardFee,
		Net:     gross - vat - cardFee,
	}, nil
}
