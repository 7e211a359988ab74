package service

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/trainer-billing/internal/config"
	"github.com/segyhp/trainer-billing/internal/domain"
	customError "github.com/segyhp/trainer-billing/pkg/errors"
	"github.com/segyhp/trainer-billing/pkg/utils"
)

// PricingPolicy decides what happens when sessions x price drifts from the
// gross amount of a package.
type PricingPolicy struct {
	Strict            bool
	ToleranceRate     decimal.Decimal
	ToleranceAbsolute int64
}

func NewPricingPolicy(cfg *config.Config) PricingPolicy {
	return PricingPolicy{
		Strict:            cfg.IsStrictPricing(),
		ToleranceRate:     cfg.GetPricingToleranceRate(),
		ToleranceAbsolute: cfg.Billing.PricingToleranceAbsolute,
	}
}

// Tolerance is the larger of gross x ToleranceRate and ToleranceAbsolute.
func (p PricingPolicy) Tolerance(gross int64) int64 {
	return utils.MaxInt64(utils.MulRate(gross, p.ToleranceRate), p.ToleranceAbsolute)
}

// Derive fills in whichever of session count and session price is missing.
// When both are given they are reconciled against gross.
func (p PricingPolicy) Derive(gross int64, totalSessions *int, sessionPrice *int64) (domain.PricingResult, error) {
	if gross < 0 {
		return domain.PricingResult{}, customError.WrapInvalidAmount(gross)
	}

	switch {
	case totalSessions != nil && sessionPrice != nil:
		return p.Reconcile(gross, *totalSessions, *sessionPrice)

	case totalSessions != nil:
		if *totalSessions < 1 || *totalSessions > domain.MaxTotalSessions {
			return domain.PricingResult{}, customError.WrapInvalidAmount(int64(*totalSessions))
		}
		return domain.PricingResult{
			TotalSessions: *totalSessions,
			SessionPrice:  utils.DivRound(gross, int64(*totalSessions)),
		}, nil

	case sessionPrice != nil:
		if *sessionPrice <= 0 {
			return domain.PricingResult{}, customError.WrapInvalidAmount(*sessionPrice)
		}
		sessions := utils.DivRound(gross, *sessionPrice)
		if sessions < 1 {
			sessions = 1
		}
		if sessions > domain.MaxTotalSessions {
			return domain.PricingResult{}, customError.WrapInvalidAmount(*sessionPrice)
		}
		return domain.PricingResult{
			TotalSessions: int(sessions),
			SessionPrice:  *sessionPrice,
		}, nil

	default:
		return domain.PricingResult{}, customError.WrapMissingPricing()
	}
}

// Reconcile accepts the pair when it lies within tolerance of gross. Otherwise
// the price becomes round(gross / sessions), or INCONSISTENT_PRICING is
// returned under the strict policy.
func (p PricingPolicy) Reconcile(gross int64, totalSessions int, sessionPrice int64) (domain.PricingResult, error) {
	if gross < 0 {
		return domain.PricingResult{}, customError.WrapInvalidAmount(gross)
	}
	if totalSessions < 1 || totalSessions > domain.MaxTotalSessions {
		return domain.PricingResult{}, customError.WrapInvalidAmount(int64(totalSessions))
	}
	if sessionPrice < 0 {
		return domain.PricingResult{}, customError.WrapInvalidAmount(sessionPrice)
	}

	result := domain.PricingResult{
		TotalSessions: totalSessions,
		SessionPrice:  sessionPrice,
	}

	// sessions x price can exceed int64 for hostile input.
	drift := decimal.NewFromInt(int64(totalSessions)).
		Mul(decimal.NewFromInt(sessionPrice)).
		Sub(decimal.NewFromInt(gross)).
		Abs()
	if drift.LessThanOrEqual(decimal.NewFromInt(p.Tolerance(gross))) {
		return result, nil
	}

	if p.Strict {
		return domain.PricingResult{}, customError.WrapInconsistentPricing(gross, int64(totalSessions), sessionPrice)
	}

	result.SessionPrice = utils.DivRound(gross, int64(totalSessions))
	result.Adjusted = result.SessionPrice != sessionPrice
	return result, nil
}
