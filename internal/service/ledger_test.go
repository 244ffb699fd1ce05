package service

import (
	"sync"
	"testing"
	"time"

	"github.com/gudcity/loyalty/internal/api/dto"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/testutil"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service           LedgerService
	enrollmentService EnrollmentService
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewLedgerService(params)
	s.enrollmentService = NewEnrollmentService(params)
}

func (s *LedgerServiceSuite) setupEnrolledCustomer(expirationDays int) {
	ctx := s.GetContext()
	biz := newTestBusiness(ctx, "acc_biz")
	cust := newTestCustomer(ctx, "acc_cust")
	prog := newTestProgram(ctx, "prog_1", biz.ID)
	prog.ExpirationDays = expirationDays

	s.NoError(s.GetStores().AccountRepo.Create(ctx, biz))
	s.NoError(s.GetStores().AccountRepo.Create(ctx, cust))
	s.NoError(s.GetStores().ProgramRepo.Create(ctx, prog))

	_, err := s.enrollmentService.Enroll(ctx, &dto.EnrollRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
}

func (s *LedgerServiceSuite) TestAward() {
	s.setupEnrolledCustomer(0)

	resp, err := s.service.Award(s.GetContext(), &dto.AwardPointsRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
		Points:     100,
	})
	s.NoError(err)
	s.Equal(int64(100), resp.Balance)

	entries, err := s.service.ListEntries(s.GetContext(), &types.LedgerEntryFilter{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
	s.Len(entries.Entries, 1)
	s.Equal(types.LedgerSourceAward, entries.Entries[0].Source)
	s.Nil(entries.Entries[0].ExpiresAt)
}

func (s *LedgerServiceSuite) TestAwardStampsExpiry() {
	s.setupEnrolledCustomer(30)

	_, err := s.service.Award(s.GetContext(), &dto.AwardPointsRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
		Points:     10,
	})
	s.NoError(err)

	entries, err := s.service.ListEntries(s.GetContext(), &types.LedgerEntryFilter{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
	s.Len(entries.Entries, 1)
	s.NotNil(entries.Entries[0].ExpiresAt)
	s.True(entries.Entries[0].ExpiresAt.After(time.Now().UTC().AddDate(0, 0, 29)))
}

func (s *LedgerServiceSuite) TestAwardWithoutEnrollmentRejected() {
	s.setupEnrolledCustomer(0)

	_, err := s.service.Award(s.GetContext(), &dto.AwardPointsRequest{
		CustomerID: "acc_other",
		ProgramID:  "prog_1",
		Points:     100,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *LedgerServiceSuite) TestAwardNegativeRejected() {
	s.setupEnrolledCustomer(0)

	_, err := s.service.Award(s.GetContext(), &dto.AwardPointsRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
		Points:     -5,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *LedgerServiceSuite) TestAwardRequiresPermission() {
	s.setupEnrolledCustomer(0)

	req := &dto.AwardPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 100,
	}

	// Staff of another business, even with every grantable flag.
	s.SetContextActor(staffActor("acc_staff", "acc_other", types.PermissionSet{
		CreateProgram: true, EditProgram: true, CreatePromotion: true,
		ScanQR: true, AwardPoints: true,
	}))
	_, err := s.service.Award(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	// Same-business staff without the award flag.
	s.SetContextActor(staffActor("acc_staff2", "acc_biz", types.PermissionSet{ScanQR: true}))
	_, err = s.service.Award(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	// Customers can never award.
	s.SetContextActor(&types.Actor{ID: "acc_cust", Role: types.AccountRoleCustomer})
	_, err = s.service.Award(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	// The denied attempts must not have touched the ledger.
	replayed, err := s.service.RecomputedBalance(s.GetContext(), "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(0), replayed)

	// Same-business staff with the flag succeeds.
	s.SetContextActor(staffActor("acc_staff3", "acc_biz", types.PermissionSet{AwardPoints: true}))
	resp, err := s.service.Award(s.GetContext(), req)
	s.NoError(err)
	s.Equal(int64(100), resp.Balance)
}

func (s *LedgerServiceSuite) TestDebit() {
	s.setupEnrolledCustomer(0)
	ctx := s.GetContext()

	_, err := s.service.Award(ctx, &dto.AwardPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 100,
	})
	s.NoError(err)

	entry, err := s.service.Debit(ctx, "acc_cust", "prog_1", 60, types.LedgerSourceRedemption, "reward", "")
	s.NoError(err)
	s.Equal(int64(-60), entry.Points)
	s.Equal(int64(40), entry.BalanceAfter)

	balance, err := s.service.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(40), balance.Balance)
}

func (s *LedgerServiceSuite) TestDebitInsufficientBalance() {
	s.setupEnrolledCustomer(0)
	ctx := s.GetContext()

	_, err := s.service.Award(ctx, &dto.AwardPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 100,
	})
	s.NoError(err)

	_, err = s.service.Debit(ctx, "acc_cust", "prog_1", 60, types.LedgerSourceRedemption, "reward", "")
	s.NoError(err)

	// 40 left; a second 60-point debit must fail without changing state
	_, err = s.service.Debit(ctx, "acc_cust", "prog_1", 60, types.LedgerSourceRedemption, "reward", "")
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))

	balance, err := s.service.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(40), balance.Balance)
}

func (s *LedgerServiceSuite) TestBalanceMatchesReplay() {
	s.setupEnrolledCustomer(0)
	ctx := s.GetContext()

	_, err := s.service.Award(ctx, &dto.AwardPointsRequest{CustomerID: "acc_cust", ProgramID: "prog_1", Points: 100})
	s.NoError(err)
	_, err = s.service.Award(ctx, &dto.AwardPointsRequest{CustomerID: "acc_cust", ProgramID: "prog_1", Points: 30})
	s.NoError(err)
	_, err = s.service.Debit(ctx, "acc_cust", "prog_1", 45, types.LedgerSourceRedemption, "reward", "")
	s.NoError(err)

	balance, err := s.service.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)

	replayed, err := s.service.RecomputedBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(balance.Balance, replayed)
	s.Equal(int64(85), replayed)
}

func (s *LedgerServiceSuite) TestConcurrentDebitsExactlyOneWins() {
	s.setupEnrolledCustomer(0)
	ctx := s.GetContext()

	_, err := s.service.Award(ctx, &dto.AwardPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 100,
	})
	s.NoError(err)

	// two concurrent 60-point debits against a balance of 100
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.Debit(ctx, "acc_cust", "prog_1", 60, types.LedgerSourceRedemption, "reward", "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsInsufficientBalance(err))
		}
	}
	s.Equal(1, succeeded)

	balance, err := s.service.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(40), balance.Balance)

	replayed, err := s.service.RecomputedBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(40), replayed)
}

func (s *LedgerServiceSuite) TestAdjustRequiresPermission() {
	s.setupEnrolledCustomer(0)

	s.SetContextActor(staffActor("acc_staff", "acc_biz", types.PermissionSet{ScanQR: true}))

	_, err := s.service.Adjust(s.GetContext(), &dto.AdjustPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 10,
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *LedgerServiceSuite) TestAdjustSignedDeltas() {
	s.setupEnrolledCustomer(0)
	ctx := s.GetContext()

	resp, err := s.service.Adjust(ctx, &dto.AdjustPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 30, Description: "goodwill",
	})
	s.NoError(err)
	s.Equal(int64(30), resp.Balance)

	resp, err = s.service.Adjust(ctx, &dto.AdjustPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: -10, Description: "correction",
	})
	s.NoError(err)
	s.Equal(int64(20), resp.Balance)

	replayed, err := s.service.RecomputedBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(20), replayed)
}

func (s *LedgerServiceSuite) TestExpireDuePoints() {
	s.setupEnrolledCustomer(0)
	ctx := s.GetContext()

	_, err := s.service.Award(ctx, &dto.AwardPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 100,
	})
	s.NoError(err)

	// backdate the award's expiry so the sweep picks it up
	entries, err := s.service.ListEntries(ctx, &types.LedgerEntryFilter{
		CustomerID: "acc_cust", ProgramID: "prog_1",
	})
	s.NoError(err)
	s.Len(entries.Entries, 1)

	store := s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore)
	expired := time.Now().UTC().Add(-time.Hour)
	s.NoError(store.SetExpiry(ctx, entries.Entries[0].ID, &expired))

	total, err := s.service.ExpireDuePoints(ctx, "prog_1")
	s.NoError(err)
	s.Equal(int64(100), total)

	balance, err := s.service.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(0), balance.Balance)

	// expiration is materialized as a negative entry, keeping replay exact
	replayed, err := s.service.RecomputedBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(0), replayed)

	all, err := s.service.ListEntries(ctx, &types.LedgerEntryFilter{
		CustomerID: "acc_cust", ProgramID: "prog_1",
	})
	s.NoError(err)
	s.Len(all.Entries, 2)
	s.Equal(types.LedgerSourceExpiration, all.Entries[0].Source)
	s.Equal(int64(-100), all.Entries[0].Points)
}

func (s *LedgerServiceSuite) TestExpiredPointsConsumedBeforeSweepStayCorrect() {
	s.setupEnrolledCustomer(0)
	ctx := s.GetContext()

	_, err := s.service.Award(ctx, &dto.AwardPointsRequest{
		CustomerID: "acc_cust", ProgramID: "prog_1", Points: 100,
	})
	s.NoError(err)
	_, err = s.service.Debit(ctx, "acc_cust", "prog_1", 70, types.LedgerSourceRedemption, "reward", "")
	s.NoError(err)

	entries, err := s.service.ListEntries(ctx, &types.LedgerEntryFilter{
		CustomerID: "acc_cust", ProgramID: "prog_1", Source: types.LedgerSourceAward,
	})
	s.NoError(err)
	s.Len(entries.Entries, 1)

	store := s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore)
	expired := time.Now().UTC().Add(-time.Hour)
	s.NoError(store.SetExpiry(ctx, entries.Entries[0].ID, &expired))

	// only the unconsumed remainder of the award expires
	total, err := s.service.ExpireDuePoints(ctx, "prog_1")
	s.NoError(err)
	s.Equal(int64(30), total)

	balance, err := s.service.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(0), balance.Balance)
}
