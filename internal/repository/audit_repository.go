package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/trainer-billing/internal/domain"
)

type auditLogRepository struct {
	db sqlx.ExtContext
}

func NewAuditLogRepository(db sqlx.ExtContext) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.FeeAuditLogEntry) error {
	query := `
		INSERT INTO fee_audit_log (id, calculation_type, package_id, payment_id, input_amount, vat_amount,
		                           card_fee_amount, net_amount, rates_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.CalculationType,
		entry.PackageID,
		entry.PaymentID,
		entry.InputAmount,
		entry.VATAmount,
		entry.CardFeeAmount,
		entry.NetAmount,
		entry.RatesUsed,
		entry.CreatedAt,
	)

	return err
}

func (r *auditLogRepository) ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.FeeAuditLogEntry, error) {
	query := `
		SELECT id, calculation_type, package_id, payment_id, input_amount, vat_amount,
		       card_fee_amount, net_amount, rates_used, created_at
		FROM fee_audit_log
		WHERE package_id = $1
		ORDER BY created_at, id
	`

	entries := []*domain.FeeAuditLogEntry{}
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, packageID); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *auditLogRepository) CountByPackageIDs(ctx context.Context, packageIDs []uuid.UUID) (map[uuid.UUID]map[domain.CalculationType]int, error) {
	query := `
		SELECT package_id, calculation_type, COUNT(*) AS n
		FROM fee_audit_log
		WHERE package_id = ANY($1::uuid[])
		GROUP BY package_id, calculation_type
	`

	var rows []struct {
		PackageID       uuid.UUID              `db:"package_id"`
		CalculationType domain.CalculationType `db:"calculation_type"`
		N               int                    `db:"n"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, pq.Array(uuidStrings(packageIDs))); err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]map[domain.CalculationType]int)
	for _, row := range rows {
		if counts[row.PackageID] == nil {
			counts[row.PackageID] = make(map[domain.CalculationType]int)
		}
		counts[row.PackageID][row.CalculationType] = row.N
	}

	return counts, nil
}
