package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/segyhp/trainer-billing/internal/domain"
)

// PackageRepository defines the interface for package data operations
type PackageRepository interface {
	// Create creates a new package
	Create(ctx context.Context, pkg *domain.Package) error

	// GetByID retrieves a package owned by the trainer
	GetByID(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error)

	// GetByIDForUpdate retrieves a package and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error)

	// List retrieves the trainer's packages, optionally for one client
	List(ctx context.Context, trainerID uuid.UUID, clientID *uuid.UUID) ([]*domain.Package, error)

	// ListPage retrieves packages of all trainers ordered by ID, starting after the given ID
	ListPage(ctx context.Context, after uuid.UUID, limit int) ([]*domain.Package, error)

	// UpdateBalance persists remaining sessions, remaining credits and the active flag
	UpdateBalance(ctx context.Context, pkg *domain.Package) error

	// DeactivateDepleted deactivates active packages with nothing left to consume
	DeactivateDepleted(ctx context.Context) ([]uuid.UUID, error)
}

// PaymentRepository defines the interface for payment data operations.
// Payments are immutable: there is no update or delete.
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// ListByPackageID retrieves all payments for a package
	ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.Payment, error)

	// CountByPackageIDs counts payments per package
	CountByPackageIDs(ctx context.Context, packageIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// SessionRepository defines the interface for session data operations
type SessionRepository interface {
	// Create creates a new session
	Create(ctx context.Context, session *domain.Session) error

	// GetByIDForUpdate retrieves a session of the trainer's packages and locks its row
	GetByIDForUpdate(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.Session, error)

	// UpdateStatus persists the status and its timestamps
	UpdateStatus(ctx context.Context, session *domain.Session) error

	// ListByPackageID retrieves all sessions of a package ordered by schedule
	ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.Session, error)
}

// AuditLogRepository is append-only: entries are never updated or deleted.
type AuditLogRepository interface {
	// Create appends one entry
	Create(ctx context.Context, entry *domain.FeeAuditLogEntry) error

	// ListByPackageID retrieves the package's history, oldest first
	ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.FeeAuditLogEntry, error)

	// CountByPackageIDs counts entries per package and calculation type
	CountByPackageIDs(ctx context.Context, packageIDs []uuid.UUID) (map[uuid.UUID]map[domain.CalculationType]int, error)
}

// Repositories groups the repositories bound to one executor (pool or transaction).
type Repositories struct {
	Packages PackageRepository
	Payments PaymentRepository
	Sessions SessionRepository
	AuditLog AuditLogRepository
}

// UnitOfWork runs a callback inside one database transaction.
type UnitOfWork interface {
	// Repositories returns repositories outside of any transaction
	Repositories() Repositories

	// Do runs fn in a transaction; any error from fn rolls everything back
	Do(ctx context.Context, fn func(repos Repositories) error) error
}
