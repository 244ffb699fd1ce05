package gormstore

import (
	"context"
	"errors"

	domainProgram "github.com/gudcity/loyalty/internal/domain/program"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/types"
	"gorm.io/gorm"
)

type programRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewProgramRepository(client postgres.IClient, log *logger.Logger) domainProgram.Repository {
	return &programRepository{
		client: client,
		log:    log,
	}
}

func (r *programRepository) Create(ctx context.Context, p *domainProgram.Program) error {
	r.log.Debugw("creating program",
		"program_id", p.ID,
		"business_id", p.BusinessID,
		"tenant_id", p.TenantID,
	)

	if err := r.client.Querier(ctx).Create(p).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create program").
			Mark(ierr.ErrDatabase)
	}

	for _, tier := range p.Tiers {
		if err := r.CreateTier(ctx, tier); err != nil {
			return err
		}
	}
	return nil
}

func (r *programRepository) Get(ctx context.Context, id string) (*domainProgram.Program, error) {
	var p domainProgram.Program
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Program with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get program").
			Mark(ierr.ErrDatabase)
	}

	tiers, err := r.ListTiers(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Tiers = tiers
	return &p, nil
}

func (r *programRepository) ListByBusiness(ctx context.Context, businessID string) ([]*domainProgram.Program, error) {
	var programs []*domainProgram.Program
	err := r.client.Querier(ctx).
		Where("business_id = ? AND tenant_id = ? AND status <> ?",
			businessID, types.GetTenantID(ctx), types.StatusDeleted).
		Order("created_at DESC").
		Find(&programs).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list programs").
			Mark(ierr.ErrDatabase)
	}

	for _, p := range programs {
		tiers, err := r.ListTiers(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Tiers = tiers
	}
	return programs, nil
}

func (r *programRepository) Update(ctx context.Context, p *domainProgram.Program) error {
	result := r.client.Querier(ctx).
		Model(&domainProgram.Program{}).
		Where("id = ? AND tenant_id = ?", p.ID, p.TenantID).
		Updates(map[string]interface{}{
			"name":            p.Name,
			"description":     p.Description,
			"type":            p.Type,
			"point_value":     p.PointValue,
			"expiration_days": p.ExpirationDays,
			"welcome_bonus":   p.WelcomeBonus,
			"status":          p.Status,
			"updated_at":      p.UpdatedAt,
			"updated_by":      p.UpdatedBy,
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update program").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("program not found").
			WithHintf("Program with ID %s was not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *programRepository) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	result := r.client.Querier(ctx).
		Model(&domainProgram.Program{}).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Update("status", status)
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update program status").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("program not found").
			WithHintf("Program with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *programRepository) GetTier(ctx context.Context, tierID string) (*domainProgram.RewardTier, error) {
	var t domainProgram.RewardTier
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", tierID, types.GetTenantID(ctx)).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Reward tier with ID %s was not found", tierID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get reward tier").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}

func (r *programRepository) ListTiers(ctx context.Context, programID string) ([]*domainProgram.RewardTier, error) {
	var tiers []*domainProgram.RewardTier
	err := r.client.Querier(ctx).
		Where("program_id = ? AND tenant_id = ? AND status = ?",
			programID, types.GetTenantID(ctx), types.StatusActive).
		Order("threshold ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list reward tiers").
			Mark(ierr.ErrDatabase)
	}
	return tiers, nil
}

func (r *programRepository) CreateTier(ctx context.Context, t *domainProgram.RewardTier) error {
	if err := r.client.Querier(ctx).Create(t).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create reward tier").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *programRepository) UpdateTier(ctx context.Context, t *domainProgram.RewardTier) error {
	result := r.client.Querier(ctx).
		Model(&domainProgram.RewardTier{}).
		Where("id = ? AND tenant_id = ?", t.ID, t.TenantID).
		Updates(map[string]interface{}{
			"threshold":  t.Threshold,
			"reward":     t.Reward,
			"updated_at": t.UpdatedAt,
			"updated_by": t.UpdatedBy,
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update reward tier").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("reward tier not found").
			WithHintf("Reward tier with ID %s was not found", t.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *programRepository) DeleteTier(ctx context.Context, tierID string) error {
	// Tiers referenced by historical redemptions must stay attributable,
	// so deletion is logical.
	result := r.client.Querier(ctx).
		Model(&domainProgram.RewardTier{}).
		Where("id = ? AND tenant_id = ?", tierID, types.GetTenantID(ctx)).
		Update("status", types.StatusDeleted)
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to delete reward tier").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("reward tier not found").
			WithHintf("Reward tier with ID %s was not found", tierID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
