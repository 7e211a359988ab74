package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

// IsValid reports whether m is one of the known payment methods.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is one monetary transaction against a package. Payments are
// immutable; corrections are recorded as new payments.
type Payment struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	PackageID     uuid.UUID     `json:"package_id" db:"package_id"`
	Amount        int64         `json:"amount" db:"amount"`
	VATAmount     int64         `json:"vat_amount" db:"vat_amount"`
	CardFeeAmount int64         `json:"card_fee_amount" db:"card_fee_amount"`
	NetAmount     int64         `json:"net_amount" db:"net_amount"`
	PaymentDate   time.Time     `json:"payment_date" db:"payment_date"`
	Method        PaymentMethod `json:"method" db:"method"`
	Description   string        `json:"description" db:"description"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// Breakdown returns the fee split stored on the payment.
func (p *Payment) Breakdown() FeeBreakdown {
	return FeeBreakdown{
		Gross:   p.Amount,
		VAT:     p.VATAmount,
		CardFee: p.CardFeeAmount,
		Net:     p.NetAmount,
	}
}

type AddPaymentRequest struct {
	Amount      int64         `json:"amount" validate:"gt=0"`
	Method      PaymentMethod `json:"method" validate:"required,payment_method"`
	PaymentDate *time.Time    `json:"payment_date,omitempty"`
	Description string        `json:"description" validate:"omitempty,max=500"`
}

type AddPaymentResponse struct {
	Payment *Payment          `json:"payment"`
	Balance PackageBalance    `json:"balance"`
	Audit   *FeeAuditLogEntry `json:"audit"`
}
