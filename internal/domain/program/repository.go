package program

import (
	"context"

	"github.com/gudcity/loyalty/internal/types"
)

// Repository defines the interface for program persistence operations
type Repository interface {
	Create(ctx context.Context, p *Program) error
	Get(ctx context.Context, id string) (*Program, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*Program, error)
	Update(ctx context.Context, p *Program) error
	UpdateStatus(ctx context.Context, id string, status types.Status) error

	// Tier operations
	GetTier(ctx context.Context, tierID string) (*RewardTier, error)
	ListTiers(ctx context.Context, programID string) ([]*RewardTier, error)
	CreateTier(ctx context.Context, t *RewardTier) error
	UpdateTier(ctx context.Context, t *RewardTier) error
	DeleteTier(ctx context.Context, tierID string) error
}
