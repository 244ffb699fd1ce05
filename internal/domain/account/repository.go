package account

import (
	"context"

	"github.com/gudcity/loyalty/internal/types"
)

// Repository defines the interface for account persistence operations
type Repository interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, id string) (*Account, error)
	ListByBusiness(ctx context.Context, businessID string, role types.AccountRole) ([]*Account, error)
	Update(ctx context.Context, a *Account) error
	UpdateStatus(ctx context.Context, id string, status types.Status) error
}
