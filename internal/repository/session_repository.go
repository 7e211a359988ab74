package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/trainer-billing/internal/domain"
)

type sessionRepository struct {
	db sqlx.ExtContext
}

func NewSessionRepository(db sqlx.ExtContext) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, package_id, scheduled_at, duration_minutes, cost, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.PackageID,
		session.ScheduledAt,
		session.DurationMinutes,
		session.Cost,
		session.Status,
		session.CreatedAt,
		session.UpdatedAt,
	)

	return err
}

func (r *sessionRepository) GetByIDForUpdate(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT s.id, s.package_id, s.scheduled_at, s.duration_minutes, s.cost, s.status,
		       s.completed_at, s.cancelled_at, s.created_at, s.updated_at
		FROM sessions s
		JOIN packages p ON p.id = s.package_id
		WHERE s.id = $1 AND p.trainer_id = $2
		FOR UPDATE OF s
	`

	var session domain.Session
	if err := sqlx.GetContext(ctx, r.db, &session, query, sessionID, trainerID); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, session *domain.Session) error {
	query := `
		UPDATE sessions
		SET status = $2, completed_at = $3, cancelled_at = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.Status,
		session.CompletedAt,
		session.CancelledAt,
		session.UpdatedAt,
	)

	return err
}

func (r *sessionRepository) ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.Session, error) {
	query := `
		SELECT id, package_id, scheduled_at, duration_minutes, cost, status, completed_at, cancelled_at, created_at, updated_at
		FROM sessions
		WHERE package_id = $1
		ORDER BY scheduled_at
	`

	sessions := []*domain.Session{}
	if err := sqlx.SelectContext(ctx, r.db, &sessions, query, packageID); err != nil {
		return nil, err
	}

	return sessions, nil
}
