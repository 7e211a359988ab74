package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/trainer-billing/internal/domain"
	"github.com/segyhp/trainer-billing/internal/repository"
	customError "github.com/segyhp/trainer-billing/pkg/errors"
)

// AuditWriter appends fee audit entries through a transaction-bound repository.
type AuditWriter struct {
	now func() time.Time
}

func NewAuditWriter() *AuditWriter {
	return &AuditWriter{now: time.Now}
}

// Record appends one entry for a fee calculation on pkg, and on payment when
// the calculation was triggered by one. Any failure is an AUDIT_WRITE_FAILURE,
// which must abort the enclosing transaction.
func (w *AuditWriter) Record(
	ctx context.Context,
	repo repository.AuditLogRepository,
	calculationType domain.CalculationType,
	pkg *domain.Package,
	payment *domain.Payment,
	breakdown domain.FeeBreakdown,
	rates domain.FeeRates,
) (*domain.FeeAuditLogEntry, error) {
	if breakdown.Sum() != breakdown.Gross {
		return nil, customError.WrapAuditWriteFailure(
			fmt.Errorf("fee split %d does not add up to input %d", breakdown.Sum(), breakdown.Gross),
		)
	}

	entry := &domain.FeeAuditLogEntry{
		ID:              uuid.New(),
		CalculationType: calculationType,
		PackageID:       pkg.ID,
		InputAmount:     breakdown.Gross,
		VATAmount:       breakdown.VAT,
		CardFeeAmount:   breakdown.CardFee,
		NetAmount:       breakdown.Net,
		RatesUsed:       rates,
		CreatedAt:       w.now(),
	}
	if payment != nil {
		paymentID := payment.ID
		entry.PaymentID = &paymentID
	}

	if err := repo.Create(ctx, entry); err != nil {
		return nil, customError.WrapAuditWriteFailure(err)
	}

	return entry, nil
}
