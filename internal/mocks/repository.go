package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/trainer-billing/internal/domain"
	"github.com/segyhp/trainer-billing/internal/repository"
)

type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockPackageRepository) GetByID(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	args := m.Called(ctx, trainerID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *MockPackageRepository) GetByIDForUpdate(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	args := m.Called(ctx, trainerID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *MockPackageRepository) List(ctx context.Context, trainerID uuid.UUID, clientID *uuid.UUID) ([]*domain.Package, error) {
	args := m.Called(ctx, trainerID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Package), args.Error(1)
}

func (m *MockPackageRepository) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]*domain.Package, error) {
	args := m.Called(ctx, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Package), args.Error(1)
}

func (m *MockPackageRepository) UpdateBalance(ctx context.Context, pkg *domain.Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockPackageRepository) DeactivateDepleted(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByPackageIDs(ctx context.Context, packageIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, packageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByIDForUpdate(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, trainerID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateStatus(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.Session, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *domain.FeeAuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListByPackageID(ctx context.Context, packageID uuid.UUID) ([]*domain.FeeAuditLogEntry, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FeeAuditLogEntry), args.Error(1)
}

func (m *MockAuditLogRepository) CountByPackageIDs(ctx context.Context, packageIDs []uuid.UUID) (map[uuid.UUID]map[domain.CalculationType]int, error) {
	args := m.Called(ctx, packageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]map[domain.CalculationType]int), args.Error(1)
}

// Repositories bundles one mock per repository.
type Repositories struct {
	Packages *MockPackageRepository
	Payments *MockPaymentRepository
	Sessions *MockSessionRepository
	AuditLog *MockAuditLogRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Packages: &MockPackageRepository{},
		Payments: &MockPaymentRepository{},
		Sessions: &MockSessionRepository{},
		AuditLog: &MockAuditLogRepository{},
	}
}

func (r *Repositories) Bind() repository.Repositories {
	return repository.Repositories{
		Packages: r.Packages,
		Payments: r.Payments,
		Sessions: r.Sessions,
		AuditLog: r.AuditLog,
	}
}

func (r *Repositories) AssertExpectations(t mock.TestingT) {
	r.Packages.AssertExpectations(t)
	r.Payments.AssertExpectations(t)
	r.Sessions.AssertExpectations(t)
	r.AuditLog.AssertExpectations(t)
}

// UnitOfWork runs callbacks directly against the mocks and counts outcomes.
type UnitOfWork struct {
	Repos     *Repositories
	Commits   int
	Rollbacks  int
}

func NewUnitOfWork(repos *Repositories) *UnitOfWork {
	return &UnitOfWork{Repos: repos}
}

func (u *UnitOfWork) Repositories() repository.Repositories {
	return u.Repos.Bind()
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := fn(u.Repos.Bind()); err != nil {
		u.Rollbacks++
		return err
	}
	u.Commits++
	return nil
}
