package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gudcity/loyalty/internal/config"
	"github.com/gudcity/loyalty/internal/domain/account"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/ledger"
	"github.com/gudcity/loyalty/internal/domain/program"
	"github.com/gudcity/loyalty/internal/domain/promocode"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/types"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// IClient defines the interface for database client operations
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// TxFromContext returns the transaction from context if it exists
	TxFromContext(ctx context.Context) *gorm.DB

	// Querier returns the current transaction handle if in a transaction,
	// or the regular handle
	Querier(ctx context.Context) *gorm.DB
}

// Client wraps gorm.DB to provide transaction management
type Client struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewDB opens the postgres connection and runs auto migration when enabled
func NewDB(cfg *config.Configuration, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.GetDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	if cfg.Postgres.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("failed creating schema resources: %w", err)
		}
	}

	return db, nil
}

// Migrate creates or updates the schema for every persisted model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&account.Account{},
		&program.Program{},
		&program.RewardTier{},
		&enrollment.Enrollment{},
		&ledger.Entry{},
		&promocode.PromoCode{},
	); err != nil {
		return err
	}

	// Uniqueness is tenant-scoped. tenant_id lives on the embedded base
	// model, out of reach of per-model index tags, so the composite unique
	// indexes are created here.
	for _, stmt := range []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollment_pair ON enrollments (tenant_id, customer_id, program_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_code ON promo_codes (tenant_id, business_id, code)",
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// NewClient creates a new client wrapper with transaction management
func NewClient(db *gorm.DB, logger *logger.Logger) IClient {
	return &Client{
		db:     db,
		logger: logger,
	}
}

// WithTx wraps the given function in a transaction
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// If we're already in a transaction, reuse it and do not start a new
	// one or commit it
	if tx := c.TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, types.CtxDBTransaction, tx)
		if err := fn(txCtx); err != nil {
			c.logger.Errorw("rolling back transaction due to error",
				"error", err,
			)
			return err
		}
		return nil
	})
}

// TxFromContext returns the transaction from context if it exists
func (c *Client) TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(types.CtxDBTransaction).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// Querier returns the current transaction handle if in a transaction, or
// the regular handle
func (c *Client) Querier(ctx context.Context) *gorm.DB {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db.WithContext(ctx)
}
