package testutil

import (
	"context"
	"sync"

	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"gorm.io/gorm"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

type txMarkerKey struct{}

// MockPostgresClient is a mock implementation of the postgres client for
// testing against in-memory stores. Transactions are serialized behind a
// single lock, which emulates the row locking the real client gets from
// SELECT ... FOR UPDATE: of any concurrent transactions, one runs at a
// time and sees the previous one's writes.
type MockPostgresClient struct {
	mu     sync.Mutex
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

// WithTx executes the given function within a serialized mock transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// If we're already in a transaction, reuse it
	if ctx.Value(txMarkerKey{}) != nil {
		return fn(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(context.WithValue(ctx, txMarkerKey{}, true))
}

// TxFromContext always returns nil; in-memory stores do not use gorm
func (c *MockPostgresClient) TxFromContext(ctx context.Context) *gorm.DB {
	return nil
}

// Querier always returns nil; in-memory stores do not use gorm
func (c *MockPostgresClient) Querier(ctx context.Context) *gorm.DB {
	return nil
}
