package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/trainer-billing/internal/domain"
)

const packageColumns = `id, trainer_id, client_id, name, gross_amount, vat_rate, card_fee_rate, calculation_method,
		vat_amount, card_fee_amount, net_amount, total_sessions, remaining_sessions, session_price, price_adjusted,
		credit_basis, remaining_credits, is_active, created_at, updated_at`

type packageRepository struct {
	db sqlx.ExtContext
}

func NewPackageRepository(db sqlx.ExtContext) PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	query := `
		INSERT INTO packages (` + packageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.ExecContext(ctx, query,
		pkg.ID,
		pkg.TrainerID,
		pkg.ClientID,
		pkg.Name,
		pkg.GrossAmount,
		pkg.VATRate,
		pkg.CardFeeRate,
		pkg.CalculationMethod,
		pkg.VATAmount,
		pkg.CardFeeAmount,
		pkg.NetAmount,
		pkg.TotalSessions,
		pkg.RemainingSessions,
		pkg.SessionPrice,
		pkg.PriceAdjusted,
		pkg.CreditBasis,
		pkg.RemainingCredits,
		pkg.IsActive,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	)

	return err
}

func (r *packageRepository) GetByID(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE id = $1 AND trainer_id = $2
	`

	var pkg domain.Package
	if err := sqlx.GetContext(ctx, r.db, &pkg, query, packageID, trainerID); err != nil {
		return nil, err
	}

	return &pkg, nil
}

func (r *packageRepository) GetByIDForUpdate(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE id = $1 AND trainer_id = $2
		FOR UPDATE
	`

	var pkg domain.Package
	if err := sqlx.GetContext(ctx, r.db, &pkg, query, packageID, trainerID); err != nil {
		return nil, err
	}

	return &pkg, nil
}

func (r *packageRepository) List(ctx context.Context, trainerID uuid.UUID, clientID *uuid.UUID) ([]*domain.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE trainer_id = $1 AND ($2::uuid IS NULL OR client_id = $2)
		ORDER BY created_at DESC
	`

	packages := []*domain.Package{}
	if err := sqlx.SelectContext(ctx, r.db, &packages, query, trainerID, clientID); err != nil {
		return nil, err
	}

	return packages, nil
}

func (r *packageRepository) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]*domain.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`

	var packages []*domain.Package
	if err := sqlx.SelectContext(ctx, r.db, &packages, query, after, limit); err != nil {
		return nil, err
	}

	return packages, nil
}

func (r *packageRepository) UpdateBalance(ctx context.Context, pkg *domain.Package) error {
	query := `
		UPDATE packages
		SET remaining_sessions = $2, remaining_credits = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		pkg.ID,
		pkg.RemainingSessions,
		pkg.RemainingCredits,
		pkg.IsActive,
		pkg.UpdatedAt,
	)

	return err
}

func (r *packageRepository) DeactivateDepleted(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		UPDATE packages p
		SET is_active = FALSE, updated_at = NOW()
		WHERE p.is_active
		  AND p.remaining_sessions = 0
		  AND NOT EXISTS (
			SELECT 1 FROM sessions s WHERE s.package_id = p.id AND s.status = 'scheduled'
		  )
		RETURNING p.id
	`

	var ids []uuid.UUID
	if err := sqlx.SelectContext(ctx, r.db, &ids, query); err != nil {
		return nil, err
	}

	return ids, nil
}
