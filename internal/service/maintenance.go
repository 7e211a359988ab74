package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/segyhp/trainer-billing/internal/domain"
	"github.com/segyhp/trainer-billing/internal/metrics"
	"github.com/segyhp/trainer-billing/internal/repository"
)

const defaultIntegrityPageSize = 500

// Integrity rules checked by VerifyLedgerIntegrity.
const (
	RuleFeeSplit          = "fee_split_exact"
	RuleSessionBounds     = "session_bounds"
	RuleCreditNonNegative = "credit_non_negative"
	RuleCreationAudit     = "creation_audit"
	RuleTopUpAudit        = "top_up_audit"
)

// MaintenanceService runs housekeeping jobs over all trainers' packages.
type MaintenanceService struct {
	store    repository.UnitOfWork
	cache    BalanceCache
	log      *slog.Logger
	pageSize int
}

func NewMaintenanceService(store repository.UnitOfWork, cache BalanceCache, log *slog.Logger) *MaintenanceService {
	return &MaintenanceService{
		store:    store,
		cache:    cache,
		log:      log,
		pageSize: defaultIntegrityPageSize,
	}
}

// DeactivateDepletedPackages deactivates active packages that have no
// sessions left and nothing scheduled. It returns how many were deactivated.
func (m *MaintenanceService) DeactivateDepletedPackages(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	err := m.store.Do(ctx, func(repos repository.Repositories) error {
		var err error
		ids, err = repos.Packages.DeactivateDepleted(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("deactivate depleted packages: %w", err)
	}

	if len(ids) > 0 {
		if err := m.cache.Invalidate(ctx, ids...); err != nil {
			m.log.Warn("balance cache invalidation failed", "count", len(ids), "error", err)
		}
	}

	metrics.PackagesDeactivated.Add(float64(len(ids)))
	m.log.Info("depleted packages deactivated", "count", len(ids))

	return len(ids), nil
}

// VerifyLedgerIntegrity walks every package and reports the ones breaking a
// ledger invariant. Violations are logged and exported as a gauge.
func (m *MaintenanceService) VerifyLedgerIntegrity(ctx context.Context) ([]domain.IntegrityViolation, error) {
	repos := m.store.Repositories()
	violations := []domain.IntegrityViolation{}
	checked := 0

	after := uuid.Nil
	for {
		page, err := repos.Packages.ListPage(ctx, after, m.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list packages after %s: %w", after, err)
		}
		if len(page) == 0 {
			break
		}

		ids := make([]uuid.UUID, 0, len(page))
		for _, pkg := range page {
			ids = append(ids, pkg.ID)
		}

		payments, err := repos.Payments.CountByPackageIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("count payments: %w", err)
		}
		audits, err := repos.AuditLog.CountByPackageIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("count audit entries: %w", err)
		}

		for _, pkg := range page {
			violations = append(violations, checkPackage(pkg, payments[pkg.ID], audits[pkg.ID])...)
		}

		checked += len(page)
		after = page[len(page)-1].ID
		if len(page) < m.pageSize {
			break
		}
	}

	for _, v := range violations {
		m.log.Warn("ledger integrity violation", "package_id", v.PackageID, "rule", v.Rule, "detail", v.Detail)
	}
	metrics.IntegrityViolations.Set(float64(len(violations)))
	m.log.Info("ledger integrity verified", "packages", checked, "violations", len(violations))

	return violations, nil
}

func checkPackage(pkg *domain.Package, payments int, audits map[domain.CalculationType]int) []domain.IntegrityViolation {
	var out []domain.IntegrityViolation
	add := func(rule, format string, args ...interface{}) {
		out = append(out, domain.IntegrityViolation{
			PackageID: pkg.ID,
			Rule:      rule,
			Detail:    fmt.Sprintf(format, args...),
		})
	}

	if b := pkg.Breakdown(); b.Sum() != b.Gross {
		add(RuleFeeSplit, "vat %d + card fee %d + net %d != gross %d", b.VAT, b.CardFee, b.Net, b.Gross)
	}
	if pkg.TotalSessions < 1 || pkg.RemainingSessions < 0 || pkg.RemainingSessions > pkg.TotalSessions {
		add(RuleSessionBounds, "remaining %d outside [0, %d]", pkg.RemainingSessions, pkg.TotalSessions)
	}
	if pkg.RemainingCredits < 0 {
		add(RuleCreditNonNegative, "remaining credits %d", pkg.RemainingCredits)
	}
	if n := audits[domain.CalculationPackageCreation]; n != 1 {
		add(RuleCreationAudit, "%d package_creation entries, want 1", n)
	}
	if n := audits[domain.CalculationCreditTopUp]; n != payments {
		add(RuleTopUpAudit, "%d credit_top_up entries for %d payments", n, payments)
	}

	return out
}
