package gormstore

import (
	"context"
	"errors"
	"time"

	domainPromo "github.com/gudcity/loyalty/internal/domain/promocode"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/types"
	"gorm.io/gorm"
)

type promoCodeRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewPromoCodeRepository(client postgres.IClient, log *logger.Logger) domainPromo.Repository {
	return &promoCodeRepository{
		client: client,
		log:    log,
	}
}

func (r *promoCodeRepository) Create(ctx context.Context, p *domainPromo.PromoCode) error {
	r.log.Debugw("creating promo code",
		"promo_id", p.ID,
		"business_id", p.BusinessID,
		"code", p.Code,
	)

	if err := r.client.Querier(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHintf("Promo code %s already exists for this business", p.Code).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create promo code").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *promoCodeRepository) Get(ctx context.Context, id string) (*domainPromo.PromoCode, error) {
	var p domainPromo.PromoCode
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Promo code with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get promo code").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *promoCodeRepository) GetByCode(ctx context.Context, businessID, code string) (*domainPromo.PromoCode, error) {
	var p domainPromo.PromoCode
	err := r.client.Querier(ctx).
		Where("business_id = ? AND code = ? AND tenant_id = ?",
			businessID, code, types.GetTenantID(ctx)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Promo code %s was not found", code).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get promo code").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *promoCodeRepository) FindByCode(ctx context.Context, code string) ([]*domainPromo.PromoCode, error) {
	var codes []*domainPromo.PromoCode
	err := r.client.Querier(ctx).
		Where("code = ? AND tenant_id = ? AND status <> ?",
			code, types.GetTenantID(ctx), types.StatusDeleted).
		Order("created_at ASC, id ASC").
		Find(&codes).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to find promo code").
			Mark(ierr.ErrDatabase)
	}
	if len(codes) == 0 {
		return nil, ierr.NewError("promo code not found").
			WithHintf("Promo code %s was not found", code).
			Mark(ierr.ErrNotFound)
	}
	return codes, nil
}

func (r *promoCodeRepository) ListByBusiness(ctx context.Context, businessID string) ([]*domainPromo.PromoCode, error) {
	var codes []*domainPromo.PromoCode
	err := r.client.Querier(ctx).
		Where("business_id = ? AND tenant_id = ? AND status <> ?",
			businessID, types.GetTenantID(ctx), types.StatusDeleted).
		Order("created_at DESC").
		Find(&codes).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list promo codes").
			Mark(ierr.ErrDatabase)
	}
	return codes, nil
}

func (r *promoCodeRepository) Consume(ctx context.Context, id, customerID string, at time.Time) error {
	// Compare-and-set on the status column: of any concurrent redeemers,
	// exactly one sees RowsAffected == 1.
	result := r.client.Querier(ctx).
		Model(&domainPromo.PromoCode{}).
		Where("id = ? AND tenant_id = ? AND code_status = ?",
			id, types.GetTenantID(ctx), types.PromoCodeStatusActive).
		Updates(map[string]interface{}{
			"code_status": types.PromoCodeStatusConsumed,
			"consumed_by": customerID,
			"consumed_at": at,
			"updated_at":  at,
			"updated_by":  types.GetActorID(ctx),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to consume promo code").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("promo code is no longer active").
			WithHint("This promo code has already been redeemed or has expired").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (r *promoCodeRepository) UpdateCodeStatus(ctx context.Context, id string, status types.PromoCodeStatus) error {
	result := r.client.Querier(ctx).
		Model(&domainPromo.PromoCode{}).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Updates(map[string]interface{}{
			"code_status": status,
			"updated_at":  time.Now().UTC(),
			"updated_by":  types.GetActorID(ctx),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update promo code status").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("promo code not found").
			WithHintf("Promo code with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *promoCodeRepository) Delete(ctx context.Context, id string) error {
	result := r.client.Querier(ctx).
		Model(&domainPromo.PromoCode{}).
		Where("id = ? AND tenant_id = ? AND status <> ?",
			id, types.GetTenantID(ctx), types.StatusDeleted).
		Updates(map[string]interface{}{
			"status":     types.StatusDeleted,
			"updated_at": time.Now().UTC(),
			"updated_by": types.GetActorID(ctx),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to delete promo code").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("promo code not found").
			WithHintf("Promo code with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *promoCodeRepository) ExpireDue(ctx context.Context, businessID string, now time.Time) (int, error) {
	result := r.client.Querier(ctx).
		Model(&domainPromo.PromoCode{}).
		Where("business_id = ? AND tenant_id = ? AND code_status = ?",
			businessID, types.GetTenantID(ctx), types.PromoCodeStatusActive).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Updates(map[string]interface{}{
			"code_status": types.PromoCodeStatusExpired,
			"updated_at":  now,
		})
	if result.Error != nil {
		return 0, ierr.WithError(result.Error).
			WithHint("Failed to expire promo codes").
			Mark(ierr.ErrDatabase)
	}
	return int(result.RowsAffected), nil
}
