package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/trainer-billing/internal/domain"
)

type paymentRepository struct {
	db sqlx.ExtContext
}

func NewPaymentRepository(db sqlx.ExtContext) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, package_id, amount, vat_amount, card_fee_amount, net_amount, payment_date, method, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.PackageID,
		payment.Amount,
		payment.VATAmount,
		payment.CardFeeAmount,
		payment.NetAmount,
		payment.PaymentDate,
		payment.Method,
		payment.Description,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, package_id, amount, vat_amount, card_fee_amount, net_amount, payment_date, method, description, created_at
		FROM payments
		WHERE package_id = $1
		ORDER BY payment_date, created_at
	`

	payments := []*domain.Payment{}
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, packageID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) CountByPackageIDs(ctx context.Context, packageIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT package_id, COUNT(*) AS n
		FROM payments
		WHERE package_id = ANY($1::uuid[])
		GROUP BY package_id
	`

	var rows []struct {
		PackageID uuid.UUID `db:"package_id"`
		N         int       `db:"n"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, pq.Array(uuidStrings(packageIDs))); err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.PackageID] = row.N
	}

	return counts, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
