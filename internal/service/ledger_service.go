package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/trainer-billing/internal/config"
	"github.com/segyhp/trainer-billing/internal/domain"
	"github.com/segyhp/trainer-billing/internal/fee"
	"github.com/segyhp/trainer-billing/internal/metrics"
	"github.com/segyhp/trainer-billing/internal/repository"
	customError "github.com/segyhp/trainer-billing/pkg/errors"
	"github.com/segyhp/trainer-billing/pkg/utils"
)

// BalanceCache caches package balance snapshots. The database stays the
// source of truth, so cache failures are logged and otherwise ignored.
type BalanceCache interface {
	Get(ctx context.Context, packageID uuid.UUID) (*domain.PackageBalance, bool, error)
	Set(ctx context.Context, balance domain.PackageBalance) error
	Invalidate(ctx context.Context, packageIDs ...uuid.UUID) error
}

// LedgerService owns the package lifecycle: creation with fee computation,
// session consumption and credit top-ups. Every mutation runs as one unit of
// work so that the state change and its audit entry commit together.
type LedgerService struct {
	store       repository.UnitOfWork
	calculator  *fee.Calculator
	pricing     PricingPolicy
	audit       *AuditWriter
	cache       BalanceCache
	creditBasis domain.CreditBasis
	location    *time.Location
	log         *slog.Logger
	now         func() time.Time
}

func NewLedgerService(
	store repository.UnitOfWork,
	calculator *fee.Calculator,
	cache BalanceCache,
	cfg *config.Config,
	log *slog.Logger,
) *LedgerService {
	return &LedgerService{
		store:       store,
		calculator:  calculator,
		pricing:     NewPricingPolicy(cfg),
		audit:       NewAuditWriter(),
		cache:       cache,
		creditBasis: cfg.GetCreditBasis(),
		location:    cfg.GetBillingLocation(),
		log:         log,
		now:         time.Now,
	}
}

// CreatePackage registers a package, splits its gross amount into fees and
// appends a package_creation audit entry in the same transaction.
func (s *LedgerService) CreatePackage(ctx context.Context, trainerID uuid.UUID, req *domain.CreatePackageRequest) (*domain.CreatePackageResponse, error) {
	defer observe("create_package", time.Now())

	pricing, err := s.pricing.Derive(req.GrossAmount, req.TotalSessions, req.SessionPrice)
	if err != nil {
		return nil, s.fail("create_package", err)
	}

	rates := s.calculator.Defaults()
	breakdown, err := s.calculator.Calculate(req.GrossAmount)
	if err != nil {
		return nil, s.fail("create_package", err)
	}

	now := s.now()
	pkg := &domain.Package{
		ID:                uuid.New(),
		TrainerID:         trainerID,
		ClientID:          req.ClientID,
		Name:              req.Name,
		GrossAmount:       breakdown.Gross,
		VATRate:           rates.VATRate,
		CardFeeRate:       rates.CardFeeRate,
		CalculationMethod: rates.Method,
		VATAmount:         breakdown.VAT,
		CardFeeAmount:     breakdown.CardFee,
		NetAmount:         breakdown.Net,
		TotalSessions:     pricing.TotalSessions,
		RemainingSessions: pricing.TotalSessions,
		SessionPrice:      pricing.SessionPrice,
		PriceAdjusted:     pricing.Adjusted,
		CreditBasis:       s.creditBasis,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	pkg.RemainingCredits = pkg.CreditFor(breakdown)

	var entry *domain.FeeAuditLogEntry
	err = s.store.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.Packages.Create(ctx, pkg); err != nil {
			return err
		}

		entry, err = s.audit.Record(ctx, repos.AuditLog, domain.CalculationPackageCreation, pkg, nil, breakdown, rates)
		return err
	})
	if err != nil {
		return nil, s.fail("create_package", err)
	}

	metrics.PackagesCreated.Inc()
	if pricing.Adjusted {
		metrics.PricingAdjustments.Inc()
	}

	s.log.Info("package created",
		"package_id", pkg.ID,
		"trainer_id", trainerID,
		"gross_amount", pkg.GrossAmount,
		"total_sessions", pkg.TotalSessions,
		"session_price", pkg.SessionPrice,
		"price_adjusted", pkg.PriceAdjusted,
	)

	return &domain.CreatePackageResponse{Package: pkg, Audit: entry}, nil
}

// ScheduleSession books a session on an active package. The cost defaults to
// the package's session price.
func (s *LedgerService) ScheduleSession(ctx context.Context, trainerID, packageID uuid.UUID, req *domain.ScheduleSessionRequest) (*domain.Session, error) {
	var session *domain.Session
	err := s.store.Do(ctx, func(repos repository.Repositories) error {
		pkg, err := lockPackage(ctx, repos, trainerID, packageID)
		if err != nil {
			return err
		}
		if !pkg.IsActive {
			return customError.WrapPackageInactive(packageID.String())
		}
		if pkg.RemainingSessions == 0 {
			return customError.WrapNoSessionsRemaining(packageID.String())
		}

		cost := pkg.SessionPrice
		if req.Cost != nil {
			cost = *req.Cost
		}
		if cost < 0 {
			return customError.WrapInvalidAmount(cost)
		}

		now := s.now()
		session = &domain.Session{
			ID:              uuid.New(),
			PackageID:       pkg.ID,
			ScheduledAt:     req.ScheduledAt,
			DurationMinutes: req.DurationMinutes,
			Cost:            cost,
			Status:          domain.SessionStatusScheduled,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		return repos.Sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, s.fail("schedule_session", err)
	}

	metrics.SessionTransitions.WithLabelValues(domain.SessionStatusScheduled).Inc()

	return session, nil
}

// CompleteSession moves a scheduled session to completed and consumes one
// session of its package. A package with no sessions left is rejected with
// NO_SESSIONS_REMAINING and nothing changes.
func (s *LedgerService) CompleteSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.CompleteSessionResponse, error) {
	defer observe("complete_session", time.Now())

	var (
		session *domain.Session
		pkg     *domain.Package
	)
	err := s.store.Do(ctx, func(repos repository.Repositories) error {
		var err error
		session, err = lockSession(ctx, repos, trainerID, sessionID)
		if err != nil {
			return err
		}
		if !session.CanTransitionTo(domain.SessionStatusCompleted) {
			return customError.WrapInvalidSessionTransition(sessionID.String(), session.Status, domain.SessionStatusCompleted)
		}

		pkg, err = lockPackage(ctx, repos, trainerID, session.PackageID)
		if err != nil {
			return err
		}
		if !pkg.IsActive {
			return customError.WrapPackageInactive(pkg.ID.String())
		}

		now := s.now()
		if !pkg.ConsumeSession(session.Cost) {
			return customError.WrapNoSessionsRemaining(pkg.ID.String())
		}
		pkg.UpdatedAt = now

		session.Status = domain.SessionStatusCompleted
		session.CompletedAt = &now
		session.UpdatedAt = now

		if err := repos.Sessions.UpdateStatus(ctx, session); err != nil {
			return err
		}
		return repos.Packages.UpdateBalance(ctx, pkg)
	})
	if err != nil {
		return nil, s.fail("complete_session", err)
	}

	s.invalidate(ctx, pkg.ID)
	metrics.SessionTransitions.WithLabelValues(domain.SessionStatusCompleted).Inc()

	s.log.Info("session completed",
		"session_id", session.ID,
		"package_id", pkg.ID,
		"remaining_sessions", pkg.RemainingSessions,
		"remaining_credits", pkg.RemainingCredits,
	)

	return &domain.CompleteSessionResponse{Session: session, Balance: pkg.Balance()}, nil
}

// CancelSession moves a scheduled session to cancelled. The package balance
// is left untouched.
func (s *LedgerService) CancelSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.Session, error) {
	var session *domain.Session
	err := s.store.Do(ctx, func(repos repository.Repositories) error {
		var err error
		session, err = lockSession(ctx, repos, trainerID, sessionID)
		if err != nil {
			return err
		}
		if !session.CanTransitionTo(domain.SessionStatusCancelled) {
			return customError.WrapInvalidSessionTransition(sessionID.String(), session.Status, domain.SessionStatusCancelled)
		}

		now := s.now()
		session.Status = domain.SessionStatusCancelled
		session.CancelledAt = &now
		session.UpdatedAt = now

		return repos.Sessions.UpdateStatus(ctx, session)
	})
	if err != nil {
		return nil, s.fail("cancel_session", err)
	}

	metrics.SessionTransitions.WithLabelValues(domain.SessionStatusCancelled).Inc()

	return session, nil
}

// AddPayment records a payment split with the package's stored rates, credits
// the package and appends a credit_top_up audit entry referencing the payment.
func (s *LedgerService) AddPayment(ctx context.Context, trainerID, packageID uuid.UUID, req *domain.AddPaymentRequest) (*domain.AddPaymentResponse, error) {
	defer observe("add_payment", time.Now())

	var (
		payment *domain.Payment
		pkg     *domain.Package
		entry   *domain.FeeAuditLogEntry
	)
	err := s.store.Do(ctx, func(repos repository.Repositories) error {
		var err error
		pkg, err = lockPackage(ctx, repos, trainerID, packageID)
		if err != nil {
			return err
		}
		if !pkg.IsActive {
			return customError.WrapPackageInactive(packageID.String())
		}

		rates := pkg.Rates()
		breakdown, err := s.calculator.CalculateWithRates(req.Amount, rates)
		if err != nil {
			return err
		}

		now := s.now()
		// Payment dates are calendar days in the billing time zone.
		paymentDate := utils.StartOfDay(now.In(s.location))
		if req.PaymentDate != nil {
			paymentDate = utils.StartOfDay(req.PaymentDate.In(s.location))
		}

		payment = &domain.Payment{
			ID:            uuid.New(),
			PackageID:     pkg.ID,
			Amount:        breakdown.Gross,
			VATAmount:     breakdown.VAT,
			CardFeeAmount: breakdown.CardFee,
			NetAmount:     breakdown.Net,
			PaymentDate:   paymentDate,
			Method:        req.Method,
			Description:   req.Description,
			CreatedAt:     now,
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		pkg.AddCredits(pkg.CreditFor(breakdown))
		pkg.UpdatedAt = now
		if err := repos.Packages.UpdateBalance(ctx, pkg); err != nil {
			return err
		}

		entry, err = s.audit.Record(ctx, repos.AuditLog, domain.CalculationCreditTopUp, pkg, payment, breakdown, rates)
		return err
	})
	if err != nil {
		return nil, s.fail("add_payment", err)
	}

	s.invalidate(ctx, pkg.ID)
	metrics.PaymentsRecorded.WithLabelValues(string(payment.Method)).Inc()
	metrics.PaymentAmount.WithLabelValues("gross").Add(float64(payment.Amount))
	metrics.PaymentAmount.WithLabelValues("vat").Add(float64(payment.VATAmount))
	metrics.PaymentAmount.WithLabelValues("card_fee").Add(float64(payment.CardFeeAmount))
	metrics.PaymentAmount.WithLabelValues("net").Add(float64(payment.NetAmount))

	s.log.Info("payment recorded",
		"payment_id", payment.ID,
		"package_id", pkg.ID,
		"amount", payment.Amount,
		"net_amount", payment.NetAmount,
		"remaining_credits", pkg.RemainingCredits,
	)

	return &domain.AddPaymentResponse{Payment: payment, Balance: pkg.Balance(), Audit: entry}, nil
}

// DeactivatePackage marks a package inactive. Deactivating twice is a no-op.
func (s *LedgerService) DeactivatePackage(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	var pkg *domain.Package
	err := s.store.Do(ctx, func(repos repository.Repositories) error {
		var err error
		pkg, err = lockPackage(ctx, repos, trainerID, packageID)
		if err != nil {
			return err
		}
		if !pkg.IsActive {
			return nil
		}

		pkg.IsActive = false
		pkg.UpdatedAt = s.now()
		return repos.Packages.UpdateBalance(ctx, pkg)
	})
	if err != nil {
		return nil, s.fail("deactivate_package", err)
	}

	s.invalidate(ctx, pkg.ID)

	return pkg, nil
}

// ReconcileSessionPricing checks sessions x price against gross under the
// configured policy.
func (s *LedgerService) ReconcileSessionPricing(gross int64, totalSessions int, sessionPrice int64) (domain.PricingResult, error) {
	return s.pricing.Reconcile(gross, totalSessions, sessionPrice)
}

// PreviewFees splits gross with the default rates without persisting anything.
func (s *LedgerService) PreviewFees(gross int64) (domain.FeeBreakdown, error) {
	return s.calculator.Calculate(gross)
}

// PreviewPricing derives session pricing without persisting anything.
func (s *LedgerService) PreviewPricing(req *domain.PricingPreviewRequest) (domain.PricingResult, error) {
	return s.pricing.Derive(req.GrossAmount, req.TotalSessions, req.SessionPrice)
}

func (s *LedgerService) GetPackage(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	pkg, err := getPackage(ctx, s.store.Repositories(), trainerID, packageID)
	if err != nil {
		return nil, s.fail("get_package", err)
	}
	return pkg, nil
}

// GetBalance serves the package balance from cache when possible.
func (s *LedgerService) GetBalance(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.PackageBalance, error) {
	cached, ok, err := s.cache.Get(ctx, packageID)
	if err != nil {
		s.log.Warn("balance cache read failed", "package_id", packageID, "error", err)
	}
	if ok && cached.TrainerID == trainerID {
		return cached, nil
	}

	pkg, err := getPackage(ctx, s.store.Repositories(), trainerID, packageID)
	if err != nil {
		return nil, s.fail("get_balance", err)
	}

	balance := pkg.Balance()
	if err := s.cache.Set(ctx, balance); err != nil {
		s.log.Warn("balance cache write failed", "package_id", packageID, "error", err)
	}

	return &balance, nil
}

func (s *LedgerService) ListPackages(ctx context.Context, trainerID uuid.UUID, clientID *uuid.UUID) ([]*domain.Package, error) {
	packages, err := s.store.Repositories().Packages.List(ctx, trainerID, clientID)
	if err != nil {
		return nil, s.fail("list_packages", err)
	}
	return packages, nil
}

func (s *LedgerService) ListPayments(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.Payment, error) {
	repos := s.store.Repositories()
	if _, err := getPackage(ctx, repos, trainerID, packageID); err != nil {
		return nil, s.fail("list_payments", err)
	}

	payments, err := repos.Payments.ListByPackageID(ctx, packageID)
	if err != nil {
		return nil, s.fail("list_payments", err)
	}
	return payments, nil
}

func (s *LedgerService) ListSessions(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.Session, error) {
	repos := s.store.Repositories()
	if _, err := getPackage(ctx, repos, trainerID, packageID); err != nil {
		return nil, s.fail("list_sessions", err)
	}

	sessions, err := repos.Sessions.ListByPackageID(ctx, packageID)
	if err != nil {
		return nil, s.fail("list_sessions", err)
	}
	return sessions, nil
}

// ListAuditLog returns the package's fee calculation history, oldest first.
func (s *LedgerService) ListAuditLog(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.FeeAuditLogEntry, error) {
	repos := s.store.Repositories()
	if _, err := getPackage(ctx, repos, trainerID, packageID); err != nil {
		return nil, s.fail("list_audit_log", err)
	}

	entries, err := repos.AuditLog.ListByPackageID(ctx, packageID)
	if err != nil {
		return nil, s.fail("list_audit_log", err)
	}
	return entries, nil
}

func (s *LedgerService) invalidate(ctx context.Context, packageIDs ...uuid.UUID) {
	if err := s.cache.Invalidate(ctx, packageIDs...); err != nil {
		s.log.Warn("balance cache invalidation failed", "package_ids", packageIDs, "error", err)
	}
}

// fail turns infrastructure errors into DATABASE_ERROR and counts the failure.
func (s *LedgerService) fail(operation string, err error) error {
	code := customError.Code(err)
	if code == "" {
		s.log.Error("ledger operation failed", "operation", operation, "error", err)
		err = customError.WrapDatabaseError(err)
		code = customError.ErrCodeDatabaseError
	}

	metrics.LedgerErrors.WithLabelValues(operation, code).Inc()
	return err
}

func observe(operation string, start time.Time) {
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func getPackage(ctx context.Context, repos repository.Repositories, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	pkg, err := repos.Packages.GetByID(ctx, trainerID, packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapPackageNotFound(packageID.String())
	}
	return pkg, err
}

func lockPackage(ctx context.Context, repos repository.Repositories, trainerID, packageID uuid.UUID) (*domain.Package, error) {
	pkg, err := repos.Packages.GetByIDForUpdate(ctx, trainerID, packageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapPackageNotFound(packageID.String())
	}
	return pkg, err
}

func lockSession(ctx context.Context, repos repository.Repositories, trainerID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := repos.Sessions.GetByIDForUpdate(ctx, trainerID, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapSessionNotFound(sessionID.String())
	}
	return session, err
}
