package service

import (
	"context"
	"sort"
	"time"

	"github.com/gudcity/loyalty/internal/api/dto"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/promocode"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
	webhookDto "github.com/gudcity/loyalty/internal/webhook/dto"
	"github.com/samber/lo"
)

// RedemptionService exchanges promo codes and point balances for value.
type RedemptionService interface {
	RedeemCode(ctx context.Context, req *dto.RedeemCodeRequest) (*dto.RedemptionResult, error)
	RedeemReward(ctx context.Context, req *dto.RedeemRewardRequest) (*dto.BalanceResponse, error)
}

type redemptionService struct {
	ServiceParams
}

func NewRedemptionService(params ServiceParams) RedemptionService {
	return &redemptionService{ServiceParams: params}
}

// RedeemCode consumes a promo code on behalf of a customer. Consumption
// is a compare-and-set on the code's status, so when two customers race
// for the same code exactly one wins. Points-type codes additionally
// credit the granted points through the ledger in the same transaction.
func (s *redemptionService) RedeemCode(ctx context.Context, req *dto.RedeemCodeRequest) (*dto.RedemptionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.PromoCodeRepo.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pc, err := s.resolveCode(ctx, candidates, req.CustomerID, now)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.PromoCodeRepo.Consume(txCtx, pc.ID, req.CustomerID, now); err != nil {
			return err
		}

		if pc.Type == types.PromoCodeTypePoints {
			programID, err := s.targetProgram(txCtx, req.CustomerID, pc.BusinessID, pc.ProgramID)
			if err != nil {
				return err
			}

			ledgerService := NewLedgerService(s.ServiceParams)
			_, err = ledgerService.Credit(txCtx, req.CustomerID, programID,
				pc.Value.IntPart(), types.LedgerSourceAward, "promo code: "+pc.Name, pc.ID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("promo code redeemed",
		"promo_code_id", pc.ID,
		"code", pc.Code,
		"customer_id", req.CustomerID,
		"type", pc.Type,
	)

	s.publishWebhookEvent(ctx, types.WebhookEventPromoRedeemed, &webhookDto.PromoRedeemedWebhookPayload{
		EventType:     types.WebhookEventPromoRedeemed,
		CustomerID:    req.CustomerID,
		BusinessID:    pc.BusinessID,
		PromotionName: pc.Name,
		Value:         pc.Value,
		Currency:      pc.Currency,
	})

	return &dto.RedemptionResult{
		PromoCodeID: pc.ID,
		Name:        pc.Name,
		Type:        pc.Type,
		Value:       pc.Value,
		Currency:    pc.Currency,
	}, nil
}

// resolveCode picks which issued code a redemption targets. Codes are
// only unique per business, so two businesses can share a code string;
// of the still-redeemable candidates (oldest first), the one whose
// issuing business the customer is actively enrolled with wins.
func (s *redemptionService) resolveCode(ctx context.Context, candidates []*promocode.PromoCode, customerID string, now time.Time) (*promocode.PromoCode, error) {
	redeemable := lo.Filter(candidates, func(pc *promocode.PromoCode, _ int) bool {
		return pc.IsRedeemable(now)
	})
	if len(redeemable) == 0 {
		return nil, ierr.NewError("promo code is not redeemable").
			WithHint("The code has already been redeemed or has expired").
			WithReportableDetails(map[string]interface{}{
				"code":   candidates[0].Code,
				"status": candidates[0].CodeStatus,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	for _, pc := range redeemable {
		enrolled, err := s.EnrollmentRepo.HasActiveForBusiness(ctx, customerID, pc.BusinessID)
		if err != nil {
			return nil, err
		}
		if enrolled {
			return pc, nil
		}
	}

	return nil, ierr.NewError("customer is not enrolled with this business").
		WithHint("Promo codes can only be redeemed by enrolled customers of the issuing business").
		Mark(ierr.ErrInvalidOperation)
}

// targetProgram resolves where a points grant lands: the code's bound
// program when the customer is actively enrolled there, otherwise the
// customer's oldest active enrollment in the business.
func (s *redemptionService) targetProgram(ctx context.Context, customerID, businessID, boundProgramID string) (string, error) {
	if boundProgramID != "" {
		enr, err := s.EnrollmentRepo.Get(ctx, customerID, boundProgramID)
		if err == nil && enr.IsActive() {
			return boundProgramID, nil
		}
		if err != nil && !ierr.IsNotFound(err) {
			return "", err
		}
	}

	enrollments, err := s.EnrollmentRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}

	active := make([]*enrollment.Enrollment, 0, len(enrollments))
	for _, enr := range enrollments {
		if enr.BusinessID == businessID && enr.IsActive() {
			active = append(active, enr)
		}
	}
	if len(active) == 0 {
		return "", ierr.NewError("no active enrollment to credit").
			WithHint("The customer has no active program with this business to receive the points").
			Mark(ierr.ErrInvalidOperation)
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].EnrolledAt.Before(active[j].EnrolledAt)
	})
	return active[0].ProgramID, nil
}

// RedeemReward exchanges points for a program's reward tier, debiting the
// tier's threshold from the customer's balance.
func (s *redemptionService) RedeemReward(ctx context.Context, req *dto.RedeemRewardRequest) (*dto.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tier, err := s.ProgramRepo.GetTier(ctx, req.TierID)
	if err != nil {
		return nil, err
	}

	if tier.ProgramID != req.ProgramID {
		return nil, ierr.NewError("reward tier does not belong to program").
			WithHintf("Tier '%s' is not part of program '%s'", req.TierID, req.ProgramID).
			Mark(ierr.ErrValidation)
	}

	ledgerService := NewLedgerService(s.ServiceParams)
	entry, err := ledgerService.Debit(ctx, req.CustomerID, req.ProgramID,
		tier.Threshold, types.LedgerSourceRedemption, "reward: "+tier.Reward, tier.ID)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("reward redeemed",
		"customer_id", req.CustomerID,
		"program_id", req.ProgramID,
		"tier_id", tier.ID,
		"points", tier.Threshold,
	)

	s.publishWebhookEvent(ctx, types.WebhookEventRewardRedeemed, &webhookDto.RewardRedeemedWebhookPayload{
		EventType:  types.WebhookEventRewardRedeemed,
		CustomerID: req.CustomerID,
		ProgramID:  req.ProgramID,
		TierID:     tier.ID,
		Reward:     tier.Reward,
		Threshold:  tier.Threshold,
		NewBalance: entry.BalanceAfter,
	})

	return &dto.BalanceResponse{
		CustomerID: req.CustomerID,
		ProgramID:  req.ProgramID,
		Balance:    entry.BalanceAfter,
	}, nil
}
