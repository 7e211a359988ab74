package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/trainer-billing/internal/domain"
)

type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) Get(ctx context.Context, packageID uuid.UUID) (*domain.PackageBalance, bool, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.PackageBalance), args.Bool(1), args.Error(2)
}

func (m *MockBalanceCache) Set(ctx context.Context, balance domain.PackageBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, packageIDs ...uuid.UUID) error {
	args := m.Called(ctx, packageIDs)
	return args.Error(0)
}
