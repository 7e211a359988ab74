package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/trainer-billing/internal/domain"
	"github.com/segyhp/trainer-billing/internal/mocks"
	"github.com/segyhp/trainer-billing/pkg/logger"
)

func newMaintenanceFixture() (*mocks.Repositories, *mocks.UnitOfWork, *mocks.MockBalanceCache, *MaintenanceService) {
	repos := mocks.NewRepositories()
	uow := mocks.NewUnitOfWork(repos)
	cache := &mocks.MockBalanceCache{}
	svc := NewMaintenanceService(uow, cache, logger.NewWithWriter(io.Discard, "error", "json"))
	return repos, uow, cache, svc
}

func TestDeactivateDepletedPackages(t *testing.T) {
	repos, uow, cache, svc := newMaintenanceFixture()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	repos.Packages.On("DeactivateDepleted", mock.Anything).Return(ids, nil)
	cache.On("Invalidate", mock.Anything, ids).Return(errors.New("redis down"))

	n, err := svc.DeactivateDepletedPackages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, uow.Commits)
	repos.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestDeactivateDepletedPackages_Nothing(t *testing.T) {
	repos, _, cache, svc := newMaintenanceFixture()
	repos.Packages.On("DeactivateDepleted", mock.Anything).Return([]uuid.UUID{}, nil)

	n, err := svc.DeactivateDepletedPackages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestDeactivateDepletedPackages_Error(t *testing.T) {
	repos, uow, _, svc := newMaintenanceFixture()
	repos.Packages.On("DeactivateDepleted", mock.Anything).Return(nil, errors.New("timeout"))

	_, err := svc.DeactivateDepletedPackages(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, 1, uow.Rollbacks)
}

func TestVerifyLedgerIntegrity(t *testing.T) {
	repos, _, _, svc := newMaintenanceFixture()
	svc.pageSize = 2

	healthy := activePackage(10, 100000, 877273)
	broken := activePackage(10, 100000, 877273)
	broken.NetAmount = 877000
	broken.RemainingSessions = 11
	missingAudit := activePackage(5, 200000, 0)

	firstPage := []*domain.Package{healthy, broken}
	secondPage := []*domain.Package{missingAudit}

	repos.Packages.On("ListPage", mock.Anything, uuid.Nil, 2).Return(firstPage, nil)
	repos.Packages.On("ListPage", mock.Anything, broken.ID, 2).Return(secondPage, nil)

	repos.Payments.On("CountByPackageIDs", mock.Anything, []uuid.UUID{healthy.ID, broken.ID}).
		Return(map[uuid.UUID]int{healthy.ID: 1}, nil)
	repos.Payments.On("CountByPackageIDs", mock.Anything, []uuid.UUID{missingAudit.ID}).
		Return(map[uuid.UUID]int{missingAudit.ID: 2}, nil)

	repos.AuditLog.On("CountByPackageIDs", mock.Anything, []uuid.UUID{healthy.ID, broken.ID}).
		Return(map[uuid.UUID]map[domain.CalculationType]int{
			healthy.ID: {domain.CalculationPackageCreation: 1, domain.CalculationCreditTopUp: 1},
			broken.ID:  {domain.CalculationPackageCreation: 1},
		}, nil)
	repos.AuditLog.On("CountByPackageIDs", mock.Anything, []uuid.UUID{missingAudit.ID}).
		Return(map[uuid.UUID]map[domain.CalculationType]int{
			missingAudit.ID: {domain.CalculationCreditTopUp: 1},
		}, nil)

	violations, err := svc.VerifyLedgerIntegrity(context.Background())
	require.NoError(t, err)

	rules := map[uuid.UUID][]string{}
	for _, v := range violations {
		rules[v.PackageID] = append(rules[v.PackageID], v.Rule)
	}

	assert.Empty(t, rules[healthy.ID])
	assert.ElementsMatch(t, []string{RuleFeeSplit, RuleSessionBounds}, rules[broken.ID])
	assert.ElementsMatch(t, []string{RuleCreationAudit, RuleTopUpAudit}, rules[missingAudit.ID])
	repos.AssertExpectations(t)
}

func TestVerifyLedgerIntegrity_ListError(t *testing.T) {
	repos, _, _, svc := newMaintenanceFixture()
	repos.Packages.On("ListPage", mock.Anything, uuid.Nil, defaultIntegrityPageSize).Return(nil, errors.New("boom"))

	_, err := svc.VerifyLedgerIntegrity(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
