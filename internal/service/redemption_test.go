package service

import (
	"sync"
	"testing"
	"time"

	"github.com/gudcity/loyalty/internal/api/dto"
	"github.com/gudcity/loyalty/internal/domain/program"
	"github.com/gudcity/loyalty/internal/domain/promocode"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/testutil"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RedemptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service           RedemptionService
	ledgerService     LedgerService
	enrollmentService EnrollmentService
}

func TestRedemptionService(t *testing.T) {
	suite.Run(t, new(RedemptionServiceSuite))
}

func (s *RedemptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewRedemptionService(params)
	s.ledgerService = NewLedgerService(params)
	s.enrollmentService = NewEnrollmentService(params)
}

func (s *RedemptionServiceSuite) setupEnrolledCustomer() {
	ctx := s.GetContext()
	biz := newTestBusiness(ctx, "acc_biz")
	cust := newTestCustomer(ctx, "acc_cust")
	prog := newTestProgram(ctx, "prog_1", biz.ID)

	s.NoError(s.GetStores().AccountRepo.Create(ctx, biz))
	s.NoError(s.GetStores().AccountRepo.Create(ctx, cust))
	s.NoError(s.GetStores().ProgramRepo.Create(ctx, prog))

	_, err := s.enrollmentService.Enroll(ctx, &dto.EnrollRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
}

func (s *RedemptionServiceSuite) createPromoCode(code string, codeType types.PromoCodeType, value int64, expiresAt *time.Time) *promocode.PromoCode {
	ctx := s.GetContext()
	pc := &promocode.PromoCode{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROMO_CODE),
		BusinessID: "acc_biz",
		Code:       code,
		Name:       "Summer Promo",
		Type:       codeType,
		Value:      decimal.NewFromInt(value),
		CodeStatus: types.PromoCodeStatusActive,
		ExpiresAt:  expiresAt,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PromoCodeRepo.Create(ctx, pc))
	return pc
}

func (s *RedemptionServiceSuite) createTier(threshold int64, reward string) *program.RewardTier {
	ctx := s.GetContext()
	tier := &program.RewardTier{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REWARD_TIER),
		ProgramID: "prog_1",
		Threshold: threshold,
		Reward:    reward,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().ProgramRepo.CreateTier(ctx, tier))
	return tier
}

func (s *RedemptionServiceSuite) TestRedeemPointsCode() {
	s.setupEnrolledCustomer()
	s.createPromoCode("GC-SUMMER", types.PromoCodeTypePoints, 25, nil)

	result, err := s.service.RedeemCode(s.GetContext(), &dto.RedeemCodeRequest{
		CustomerID: "acc_cust",
		Code:       "GC-SUMMER",
	})
	s.NoError(err)
	s.Equal("Summer Promo", result.Name)
	s.True(result.Value.Equal(decimal.NewFromInt(25)))

	// the grant landed in the customer's enrollment
	balance, err := s.ledgerService.CurrentBalance(s.GetContext(), "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(25), balance.Balance)

	events := s.GetWebhookPublisher().EventsByName(types.WebhookEventPromoRedeemed)
	s.Len(events, 1)
}

func (s *RedemptionServiceSuite) TestRedeemDiscountCodeDoesNotTouchLedger() {
	s.setupEnrolledCustomer()
	s.createPromoCode("GC-DISC", types.PromoCodeTypeDiscount, 10, nil)

	result, err := s.service.RedeemCode(s.GetContext(), &dto.RedeemCodeRequest{
		CustomerID: "acc_cust",
		Code:       "GC-DISC",
	})
	s.NoError(err)
	s.Equal(types.PromoCodeTypeDiscount, result.Type)

	balance, err := s.ledgerService.CurrentBalance(s.GetContext(), "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(0), balance.Balance)
}

func (s *RedemptionServiceSuite) TestRedeemUnknownCode() {
	s.setupEnrolledCustomer()

	_, err := s.service.RedeemCode(s.GetContext(), &dto.RedeemCodeRequest{
		CustomerID: "acc_cust",
		Code:       "GC-NOPE",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *RedemptionServiceSuite) TestRedeemExpiredCode() {
	s.setupEnrolledCustomer()
	expired := time.Now().UTC().Add(-time.Hour)
	s.createPromoCode("GC-OLD", types.PromoCodeTypePoints, 25, &expired)

	_, err := s.service.RedeemCode(s.GetContext(), &dto.RedeemCodeRequest{
		CustomerID: "acc_cust",
		Code:       "GC-OLD",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *RedemptionServiceSuite) TestRedeemCodeTwice() {
	s.setupEnrolledCustomer()
	s.createPromoCode("GC-ONCE", types.PromoCodeTypePoints, 25, nil)

	_, err := s.service.RedeemCode(s.GetContext(), &dto.RedeemCodeRequest{
		CustomerID: "acc_cust", Code: "GC-ONCE",
	})
	s.NoError(err)

	_, err = s.service.RedeemCode(s.GetContext(), &dto.RedeemCodeRequest{
		CustomerID: "acc_cust", Code: "GC-ONCE",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *RedemptionServiceSuite) TestRedeemCodeRequiresEnrollment() {
	s.setupEnrolledCustomer()
	s.createPromoCode("GC-MEMBER", types.PromoCodeTypePoints, 25, nil)

	stranger := newTestCustomer(s.GetContext(), "acc_stranger")
	s.NoError(s.GetStores().AccountRepo.Create(s.GetContext(), stranger))

	_, err := s.service.RedeemCode(s.GetContext(), &dto.RedeemCodeRequest{
		CustomerID: "acc_stranger",
		Code:       "GC-MEMBER",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *RedemptionServiceSuite) TestSameCodeStringResolvesByEnrollment() {
	s.setupEnrolledCustomer()
	ctx := s.GetContext()

	// Another business issued the same code string first. The customer is
	// not enrolled with it, so redemption must land on acc_biz's code.
	foreign := &promocode.PromoCode{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROMO_CODE),
		BusinessID: "acc_other",
		Code:       "GC-SHARED",
		Name:       "Other Promo",
		Type:       types.PromoCodeTypePoints,
		Value:      decimal.NewFromInt(500),
		CodeStatus: types.PromoCodeStatusActive,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	foreign.CreatedAt = foreign.CreatedAt.Add(-time.Hour)
	s.NoError(s.GetStores().PromoCodeRepo.Create(ctx, foreign))

	own := s.createPromoCode("GC-SHARED", types.PromoCodeTypePoints, 25, nil)

	result, err := s.service.RedeemCode(ctx, &dto.RedeemCodeRequest{
		CustomerID: "acc_cust",
		Code:       "GC-SHARED",
	})
	s.NoError(err)
	s.Equal(own.ID, result.PromoCodeID)
	s.True(result.Value.Equal(decimal.NewFromInt(25)))

	// The other business's code is untouched.
	got, err := s.GetStores().PromoCodeRepo.Get(ctx, foreign.ID)
	s.NoError(err)
	s.Equal(types.PromoCodeStatusActive, got.CodeStatus)
}

func (s *RedemptionServiceSuite) TestConcurrentRedeemExactlyOneWins() {
	s.setupEnrolledCustomer()
	s.createPromoCode("GC-RACE", types.PromoCodeTypePoints, 25, nil)

	second := newTestCustomer(s.GetContext(), "acc_cust2")
	s.NoError(s.GetStores().AccountRepo.Create(s.GetContext(), second))
	_, err := s.enrollmentService.Enroll(s.GetContext(), &dto.EnrollRequest{
		CustomerID: "acc_cust2", ProgramID: "prog_1",
	})
	s.NoError(err)

	customers := []string{"acc_cust", "acc_cust2"}
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, customerID := range customers {
		wg.Add(1)
		go func(i int, customerID string) {
			defer wg.Done()
			_, errs[i] = s.service.RedeemCode(s.GetContext(), &dto.RedeemCodeRequest{
				CustomerID: customerID,
				Code:       "GC-RACE",
			})
		}(i, customerID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsAlreadyExists(err))
		}
	}
	s.Equal(1, succeeded)
}

func (s *RedemptionServiceSuite) TestRedeemReward() {
	s.setupEnrolledCustomer()
	tier := s.createTier(50, "Free coffee")
	ctx := s.GetContext()

	_, err := s.ledgerService.Award(ctx, &dto.AwardPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 50,
	})
	s.NoError(err)

	resp, err := s.service.RedeemReward(ctx, &dto.RedeemRewardRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
		TierID:     tier.ID,
	})
	s.NoError(err)
	s.Equal(int64(0), resp.Balance)

	events := s.GetWebhookPublisher().EventsByName(types.WebhookEventRewardRedeemed)
	s.Len(events, 1)
}

func (s *RedemptionServiceSuite) TestRedeemRewardBelowThreshold() {
	s.setupEnrolledCustomer()
	tier := s.createTier(50, "Free coffee")
	ctx := s.GetContext()

	_, err := s.ledgerService.Award(ctx, &dto.AwardPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 49,
	})
	s.NoError(err)

	_, err = s.service.RedeemReward(ctx, &dto.RedeemRewardRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
		TierID:     tier.ID,
	})
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))

	// nothing was debited
	balance, err := s.ledgerService.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(49), balance.Balance)
}

func (s *RedemptionServiceSuite) TestRedeemRewardWrongProgram() {
	s.setupEnrolledCustomer()
	tier := s.createTier(50, "Free coffee")

	prog2 := newTestProgram(s.GetContext(), "prog_2", "acc_biz")
	s.NoError(s.GetStores().ProgramRepo.Create(s.GetContext(), prog2))

	_, err := s.service.RedeemReward(s.GetContext(), &dto.RedeemRewardRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_2",
		TierID:     tier.ID,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *RedemptionServiceSuite) TestBoundCodeCreditsBoundProgram() {
	s.setupEnrolledCustomer()
	ctx := s.GetContext()

	prog2 := newTestProgram(ctx, "prog_2", "acc_biz")
	prog2.Name = "Lunch Card"
	s.NoError(s.GetStores().ProgramRepo.Create(ctx, prog2))
	_, err := s.enrollmentService.Enroll(ctx, &dto.EnrollRequest{
		CustomerID: "acc_cust", ProgramID: "prog_2",
	})
	s.NoError(err)

	pc := &promocode.PromoCode{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROMO_CODE),
		BusinessID: "acc_biz",
		Code:       "GC-LUNCH",
		Name:       "Lunch Bonus",
		Type:       types.PromoCodeTypePoints,
		Value:      decimal.NewFromInt(15),
		ProgramID:  "prog_2",
		CodeStatus: types.PromoCodeStatusActive,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PromoCodeRepo.Create(ctx, pc))

	_, err = s.service.RedeemCode(ctx, &dto.RedeemCodeRequest{
		CustomerID: "acc_cust", Code: "GC-LUNCH",
	})
	s.NoError(err)

	balance, err := s.ledgerService.CurrentBalance(ctx, "acc_cust", "prog_2")
	s.NoError(err)
	s.Equal(int64(15), balance.Balance)

	balance, err = s.ledgerService.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(0), balance.Balance)
}
