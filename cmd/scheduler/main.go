package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/segyhp/trainer-billing/internal/cache"
	"github.com/segyhp/trainer-billing/internal/config"
	"github.com/segyhp/trainer-billing/internal/repository"
	"github.com/segyhp/trainer-billing/internal/service"
	"github.com/segyhp/trainer-billing/pkg/logger"
)

const jobTimeout = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format).With("component", "scheduler")
	log.Info("starting billing scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := cache.Connect(cache.ConnectionInfo{
		Addr:        cfg.Redis.Addr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.GetHealthTimeout(),
		Timeout:     cfg.GetHealthTimeout(),
	})
	if err != nil {
		log.Warn("redis unavailable, cache invalidation disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	store := repository.NewStore(db, repository.RetryConfig{
		Attempts: cfg.TxRetry.Attempts,
		Delay:    cfg.TxRetry.Delay,
		MaxDelay: cfg.TxRetry.MaxDelay,
	})
	maintenance := service.NewMaintenanceService(store,
		cache.NewBalanceCache(redisClient, cfg.Redis.Prefix, cfg.Redis.BalanceCacheTTL), log)

	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetSchedulerLocation()))

	if err := setupCronJobs(c, cfg, maintenance, log); err != nil {
		log.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	c.Start()
	log.Info("scheduler started", "timezone", cfg.Scheduler.Timezone)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, maintenance *service.MaintenanceService, log *slog.Logger) error {
	// Deactivate packages with nothing left to consume
	if _, err := c.AddFunc(cfg.Scheduler.DeactivateSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := maintenance.DeactivateDepletedPackages(ctx); err != nil {
			log.Error("deactivate depleted packages job failed", "error", err)
		}
	}); err != nil {
		return err
	}

	// Verify ledger invariants against the audit trail
	if _, err := c.AddFunc(cfg.Scheduler.IntegritySpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := maintenance.VerifyLedgerIntegrity(ctx); err != nil {
			log.Error("ledger integrity job failed", "error", err)
		}
	}); err != nil {
		return err
	}

	log.Info("cron jobs scheduled",
		"deactivate_spec", cfg.Scheduler.DeactivateSpec,
		"integrity_spec", cfg.Scheduler.IntegritySpec,
	)
	return nil
}
