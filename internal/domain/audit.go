package domain

import (
	"time"

	"github.com/google/uuid"
)

type CalculationType string

const (
	CalculationPackageCreation CalculationType = "package_creation"
	CalculationCreditTopUp     CalculationType = "credit_top_up"
)

// FeeAuditLogEntry is an immutable record of one fee calculation.
type FeeAuditLogEntry struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CalculationType CalculationType `json:"calculation_type" db:"calculation_type"`
	PackageID       uuid.UUID       `json:"package_id" db:"package_id"`
	PaymentID       *uuid.UUID      `json:"payment_id,omitempty" db:"payment_id"`
	InputAmount     int64           `json:"input_amount" db:"input_amount"`
	VATAmount       int64           `json:"vat_amount" db:"vat_amount"`
	CardFeeAmount   int64           `json:"card_fee_amount" db:"card_fee_amount"`
	NetAmount       int64           `json:"net_amount" db:"net_amount"`
	RatesUsed       FeeRates        `json:"rates_used" db:"rates_used"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// Outputs returns the recorded fee split.
func (e *FeeAuditLogEntry) Outputs() FeeBreakdown {
	return FeeBreakdown{
		Gross:   e.InputAmount,
		VAT:     e.VATAmount,
		CardFee: e.CardFeeAmount,
		Net:     e.NetAmount,
	}
}

// IntegrityViolation describes a ledger invariant that does not hold.
type IntegrityViolation struct {
	PackageID uuid.UUID `json:"package_id"`
	Rule      string    `json:"rule"`
	Detail    string    `json:"detail"`
}
