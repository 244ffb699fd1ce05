package service

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/api/dto"
	"github.com/gudcity/loyalty/internal/domain/promocode"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/samber/lo"
)

// PromotionService manages a business's promo codes. Redemption lives in
// RedemptionService; this service covers issuance and lifecycle.
type PromotionService interface {
	CreatePromoCode(ctx context.Context, req *dto.CreatePromoCodeRequest) (*dto.PromoCodeResponse, error)
	GetPromoCode(ctx context.Context, id string) (*dto.PromoCodeResponse, error)
	ListPromoCodes(ctx context.Context, businessID string) ([]*dto.PromoCodeResponse, error)
	DeletePromoCode(ctx context.Context, id string) error
	ExpirePromoCodes(ctx context.Context, businessID string) (int, error)
}

type promotionService struct {
	ServiceParams
}

func NewPromotionService(params ServiceParams) PromotionService {
	return &promotionService{ServiceParams: params}
}

func (s *promotionService) CreatePromoCode(ctx context.Context, req *dto.CreatePromoCodeRequest) (*dto.PromoCodeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkPermission(ctx, types.ActionCreatePromotion, req.BusinessID); err != nil {
		return nil, err
	}

	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now().UTC()) {
		return nil, ierr.NewError("expiry is in the past").
			WithHint("Promo codes must expire in the future").
			Mark(ierr.ErrValidation)
	}

	if req.ProgramID != "" {
		prog, err := s.ProgramRepo.Get(ctx, req.ProgramID)
		if err != nil {
			return nil, err
		}
		if prog.BusinessID != req.BusinessID {
			return nil, ierr.NewError("program belongs to another business").
				WithHint("Promo codes can only be bound to the issuing business's own programs").
				Mark(ierr.ErrValidation)
		}
	}

	pc := req.ToPromoCode(types.GetDefaultBaseModel(ctx))
	if err := pc.Validate(); err != nil {
		return nil, err
	}

	if err := s.PromoCodeRepo.Create(ctx, pc); err != nil {
		return nil, err
	}

	s.Logger.Infow("promo code created",
		"promo_code_id", pc.ID,
		"business_id", pc.BusinessID,
		"code", pc.Code,
		"type", pc.Type,
	)

	return dto.ToPromoCodeResponse(pc), nil
}

func (s *promotionService) GetPromoCode(ctx context.Context, id string) (*dto.PromoCodeResponse, error) {
	pc, err := s.PromoCodeRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToPromoCodeResponse(pc), nil
}

func (s *promotionService) ListPromoCodes(ctx context.Context, businessID string) ([]*dto.PromoCodeResponse, error) {
	if err := s.checkPermission(ctx, types.ActionCreatePromotion, businessID); err != nil {
		return nil, err
	}

	codes, err := s.PromoCodeRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	return lo.Map(codes, func(pc *promocode.PromoCode, _ int) *dto.PromoCodeResponse {
		return dto.ToPromoCodeResponse(pc)
	}), nil
}

// DeletePromoCode logically removes a code. This is an owner-only action:
// staff cannot delete promotions regardless of their permission set.
func (s *promotionService) DeletePromoCode(ctx context.Context, id string) error {
	pc, err := s.PromoCodeRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.checkPermission(ctx, types.ActionDeletePromotion, pc.BusinessID); err != nil {
		return err
	}

	if err := s.PromoCodeRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.Infow("promo code deleted",
		"promo_code_id", id,
		"business_id", pc.BusinessID,
	)
	return nil
}

// ExpirePromoCodes sweeps a business's active codes past their expiry.
func (s *promotionService) ExpirePromoCodes(ctx context.Context, businessID string) (int, error) {
	count, err := s.PromoCodeRepo.ExpireDue(ctx, businessID, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.Logger.Infow("promo codes expired",
			"business_id", businessID,
			"count", count,
		)
	}
	return count, nil
}
