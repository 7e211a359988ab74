package repository

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
)

// RetryConfig bounds how often a transaction is retried after a serialization failure.
type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// Store is the sqlx-backed UnitOfWork.
type Store struct {
	db    *sqlx.DB
	retry RetryConfig
}

func NewStore(db *sqlx.DB, retryCfg RetryConfig) *Store {
	if retryCfg.Attempts == 0 {
		retryCfg.Attempts = 1
	}
	return &Store{db: db, retry: retryCfg}
}

func newRepositories(ext sqlx.ExtContext) Repositories {
	return Repositories{
		Packages: NewPackageRepository(ext),
		Payments: NewPaymentRepository(ext),
		Sessions: NewSessionRepository(ext),
		AuditLog: NewAuditLogRepository(ext),
	}
}

func (s *Store) Repositories() Repositories {
	return newRepositories(s.db)
}

func (s *Store) Do(ctx context.Context, fn func(repos Repositories) error) error {
	return retry.Do(
		func() error {
			return s.runInTx(ctx, fn)
		},
		retry.Attempts(s.retry.Attempts),
		retry.Delay(s.retry.Delay),
		retry.MaxDelay(s.retry.MaxDelay),
		retry.RetryIf(IsRetryableError),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

func (s *Store) runInTx(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	return tx.Commit()
}
