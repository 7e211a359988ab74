package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTotalSessions is the largest session count a package row can hold.
const MaxTotalSessions = math.MaxInt32

// CreditBasis selects which figure of a fee split is credited to the package.
type CreditBasis string

const (
	CreditBasisNet   CreditBasis = "net"
	CreditBasisGross CreditBasis = "gross"
)

// Package represents a purchased block of training sessions for one client.
type Package struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TrainerID uuid.UUID `json:"trainer_id" db:"trainer_id"`
	ClientID  uuid.UUID `json:"client_id" db:"client_id"`
	Name      string    `json:"name" db:"name"`

	GrossAmount       int64             `json:"gross_amount" db:"gross_amount"`
	VATRate           decimal.Decimal   `json:"vat_rate" db:"vat_rate"`
	CardFeeRate       decimal.Decimal   `json:"card_fee_rate" db:"card_fee_rate"`
	CalculationMethod CalculationMethod `json:"calculation_method" db:"calculation_method"`
	VATAmount         int64             `json:"vat_amount" db:"vat_amount"`
	CardFeeAmount     int64             `json:"card_fee_amount" db:"card_fee_amount"`
	NetAmount         int64             `json:"net_amount" db:"net_amount"`

	TotalSessions     int   `json:"total_sessions" db:"total_sessions"`
	RemainingSessions int   `json:"remaining_sessions" db:"remaining_sessions"`
	SessionPrice      int64 `json:"session_price" db:"session_price"`
	PriceAdjusted     bool  `json:"price_adjusted" db:"price_adjusted"`

	CreditBasis      CreditBasis `json:"credit_basis" db:"credit_basis"`
	RemainingCredits int64       `json:"remaining_credits" db:"remaining_credits"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Rates returns the rate set stored on the package.
func (p *Package) Rates() FeeRates {
	return FeeRates{
		VATRate:     p.VATRate,
		CardFeeRate: p.CardFeeRate,
		Method:      p.CalculationMethod,
	}
}

// Breakdown returns the fee split persisted at creation.
func (p *Package) Breakdown() FeeBreakdown {
	return FeeBreakdown{
		Gross:   p.GrossAmount,
		VAT:     p.VATAmount,
		CardFee: p.CardFeeAmount,
		Net:     p.NetAmount,
	}
}

// CreditFor returns the amount of a split credited under the package's basis.
func (p *Package) CreditFor(b FeeBreakdown) int64 {
	if p.CreditBasis == CreditBasisGross {
		return b.Gross
	}
	return b.Net
}

// ConsumeSession takes one session off the package and reduces the remaining
// credits by cost, never below zero. It reports false when no session is left,
// leaving the package untouched.
func (p *Package) ConsumeSession(cost int64) bool {
	if p.RemainingSessions <= 0 {
		return false
	}
	p.RemainingSessions--
	p.RemainingCredits -= cost
	if p.RemainingCredits < 0 {
		p.RemainingCredits = 0
	}
	return true
}

// AddCredits raises the remaining credits by a non-negative amount.
func (p *Package) AddCredits(amount int64) {
	if amount > 0 {
		p.RemainingCredits += amount
	}
}

// Balance returns the package's current consumption snapshot.
func (p *Package) Balance() PackageBalance {
	return PackageBalance{
		PackageID:         p.ID,
		TrainerID:         p.TrainerID,
		TotalSessions:     p.TotalSessions,
		RemainingSessions: p.RemainingSessions,
		RemainingCredits:  p.RemainingCredits,
		SessionPrice:      p.SessionPrice,
		IsActive:          p.IsActive,
	}
}

// PackageBalance is the read model shown next to a package.
type PackageBalance struct {
	PackageID         uuid.UUID `json:"package_id"`
	TrainerID         uuid.UUID `json:"trainer_id"`
	TotalSessions     int       `json:"total_sessions"`
	RemainingSessions int       `json:"remaining_sessions"`
	RemainingCredits  int64     `json:"remaining_credits"`
	SessionPrice      int64     `json:"session_price"`
	IsActive          bool      `json:"is_active"`
}

// DTOs for requests and responses

type CreatePackageRequest struct {
	ClientID      uuid.UUID `json:"client_id" validate:"required"`
	Name          string    `json:"name" validate:"omitempty,max=120"`
	GrossAmount   int64     `json:"gross_amount" validate:"gte=0"`
	TotalSessions *int      `json:"total_sessions,omitempty" validate:"omitempty,gte=1,lte=2147483647"`
	SessionPrice  *int64    `json:"session_price,omitempty" validate:"omitempty,gt=0"`
}

type CreatePackageResponse struct {
	Package *Package         `json:"package"`
	Audit   *FeeAuditLogEntry `json:"audit"`
}

type PricingPreviewRequest struct {
	GrossAmount   int64  `json:"gross_amount" validate:"gte=0"`
	TotalSessions *int   `json:"total_sessions,omitempty" validate:"omitempty,gte=1,lte=2147483647"`
	SessionPrice  *int64 `json:"session_price,omitempty" validate:"omitempty,gt=0"`
}

// PricingResult is the outcome of deriving or reconciling session pricing.
type PricingResult struct {
	TotalSessions int   `json:"total_sessions"`
	SessionPrice  int64 `json:"session_price"`
	Adjusted      bool  `json:"adjusted"`
}

type FeePreviewRequest struct {
	GrossAmount int64 `json:"gross_amount" validate:"gte=0"`
}
