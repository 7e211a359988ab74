package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/trainer-billing/internal/cache"
	"github.com/segyhp/trainer-billing/internal/config"
	"github.com/segyhp/trainer-billing/internal/fee"
	"github.com/segyhp/trainer-billing/internal/handler"
	"github.com/segyhp/trainer-billing/internal/metrics"
	"github.com/segyhp/trainer-billing/internal/repository"
	"github.com/segyhp/trainer-billing/internal/service"
	"github.com/segyhp/trainer-billing/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis only backs the balance cache, so the service runs without it
	redisClient := initRedis(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics.Register()

	store := repository.NewStore(db, repository.RetryConfig{
		Attempts: cfg.TxRetry.Attempts,
		Delay:    cfg.TxRetry.Delay,
		MaxDelay: cfg.TxRetry.MaxDelay,
	})
	balanceCache := cache.NewBalanceCache(redisClient, cfg.Redis.Prefix, cfg.Redis.BalanceCacheTTL)
	calculator := fee.NewCalculator(cfg.GetFeeRates())

	ledgerService := service.NewLedgerService(store, calculator, balanceCache, cfg, log)
	billingHandler := handler.NewBillingHandler(ledgerService, log)

	var redisPinger handler.RedisPinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	healthHandler := handler.NewHealthHandler(db, redisPinger, cfg.GetHealthTimeout())

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler.NewRouter(billingHandler, healthHandler, promhttp.Handler(), log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config, log *slog.Logger) *redis.Client {
	client, err := cache.Connect(cache.ConnectionInfo{
		Addr:        cfg.Redis.Addr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.GetHealthTimeout(),
		Timeout:     cfg.GetHealthTimeout(),
	})
	if err != nil {
		log.Warn("redis unavailable, balance cache disabled", "addr", cfg.Redis.Addr(), "error", err)
		return nil
	}
	return client
}
