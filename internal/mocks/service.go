package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/trainer-billing/internal/domain"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreatePackage(ctx context.Context, trainerID uuid.UUID, req *domain.CreatePackageRequest) (*domain.CreatePackageResponse, error) {
	args := m.Called(ctx, trainerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatePackageResponse), args.Error(1)
}

func (m *MockLedgerService) GetPackage(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	args := m.Called(ctx, trainerID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.PackageBalance, error) {
	args := m.Called(ctx, trainerID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageBalance), args.Error(1)
}

func (m *MockLedgerService) ListPackages(ctx context.Context, trainerID uuid.UUID, clientID *uuid.UUID) ([]*domain.Package, error) {
	args := m.Called(ctx, trainerID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Package), args.Error(1)
}

func (m *MockLedgerService) DeactivatePackage(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	args := m.Called(ctx, trainerID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Package), args.Error(1)
}

func (m *MockLedgerService) AddPayment(ctx context.Context, trainerID, packageID uuid.UUID, req *domain.AddPaymentRequest) (*domain.AddPaymentResponse, error) {
	args := m.Called(ctx, trainerID, packageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddPaymentResponse), args.Error(1)
}

func (m *MockLedgerService) ListPayments(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, trainerID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockLedgerService) ScheduleSession(ctx context.Context, trainerID, packageID uuid.UUID, req *domain.ScheduleSessionRequest) (*domain.Session, error) {
	args := m.Called(ctx, trainerID, packageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockLedgerService) ListSessions(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.Session, error) {
	args := m.Called(ctx, trainerID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

func (m *MockLedgerService) CompleteSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.CompleteSessionResponse, error) {
	args := m.Called(ctx, trainerID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompleteSessionResponse), args.Error(1)
}

func (m *MockLedgerService) CancelSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, trainerID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockLedgerService) ListAuditLog(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.FeeAuditLogEntry, error) {
	args := m.Called(ctx, trainerID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FeeAuditLogEntry), args.Error(1)
}

func (m *MockLedgerService) PreviewFees(gross int64) (domain.FeeBreakdown, error) {
	args := m.Called(gross)
	return args.Get(0).(domain.FeeBreakdown), args.Error(1)
}

func (m *MockLedgerService) PreviewPricing(req *domain.PricingPreviewRequest) (domain.PricingResult, error) {
	args := m.Called(req)
	return args.Get(0).(domain.PricingResult), args.Error(1)
}
