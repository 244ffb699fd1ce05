package service

import (
	"testing"

	"github.com/gudcity/loyalty/internal/api/dto"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/testutil"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/stretchr/testify/suite"
)

type EnrollmentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service       EnrollmentService
	ledgerService LedgerService
}

func TestEnrollmentService(t *testing.T) {
	suite.Run(t, new(EnrollmentServiceSuite))
}

func (s *EnrollmentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewEnrollmentService(params)
	s.ledgerService = NewLedgerService(params)
}

func (s *EnrollmentServiceSuite) setupFixtures(welcomeBonus int64) {
	ctx := s.GetContext()
	biz := newTestBusiness(ctx, "acc_biz")
	cust := newTestCustomer(ctx, "acc_cust")
	prog := newTestProgram(ctx, "prog_1", biz.ID)
	prog.WelcomeBonus = welcomeBonus

	s.NoError(s.GetStores().AccountRepo.Create(ctx, biz))
	s.NoError(s.GetStores().AccountRepo.Create(ctx, cust))
	s.NoError(s.GetStores().ProgramRepo.Create(ctx, prog))
}

func (s *EnrollmentServiceSuite) TestEnroll() {
	s.setupFixtures(0)

	resp, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
	s.Equal(types.EnrollmentStatusActive, resp.EnrollmentStatus)
	s.Equal(int64(0), resp.Balance)

	events := s.GetWebhookPublisher().EventsByName(types.WebhookEventCustomerEnrolled)
	s.Len(events, 1)
}

func (s *EnrollmentServiceSuite) TestEnrollGrantsWelcomeBonus() {
	s.setupFixtures(50)

	resp, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
	s.Equal(int64(50), resp.Balance)

	// the bonus is a real ledger entry, not just a counter bump
	balance, err := s.ledgerService.CurrentBalance(s.GetContext(), "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(50), balance.Balance)

	entries, err := s.ledgerService.ListEntries(s.GetContext(), &types.LedgerEntryFilter{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
	s.Len(entries.Entries, 1)
	s.Equal(types.LedgerSourceWelcomeBonus, entries.Entries[0].Source)
	s.Equal(int64(50), entries.Entries[0].Points)
}

func (s *EnrollmentServiceSuite) TestEnrollTwiceConflicts() {
	s.setupFixtures(0)
	ctx := s.GetContext()

	_, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.NoError(err)

	_, err = s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *EnrollmentServiceSuite) TestEnrollNonCustomerRejected() {
	s.setupFixtures(0)
	ctx := s.GetContext()

	_, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_biz", ProgramID: "prog_1"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *EnrollmentServiceSuite) TestEnrollDeletedProgramRejected() {
	s.setupFixtures(0)
	ctx := s.GetContext()

	s.NoError(s.GetStores().ProgramRepo.UpdateStatus(ctx, "prog_1", types.StatusDeleted))

	_, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *EnrollmentServiceSuite) TestCancelKeepsHistory() {
	s.setupFixtures(25)
	ctx := s.GetContext()

	_, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.NoError(err)

	err = s.service.Cancel(ctx, &dto.CancelEnrollmentRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.NoError(err)

	enr, err := s.GetStores().EnrollmentRepo.Get(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(types.EnrollmentStatusCancelled, enr.EnrollmentStatus)
	s.Equal(int64(25), enr.Balance)

	entries, err := s.ledgerService.ListEntries(ctx, &types.LedgerEntryFilter{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
	s.Len(entries.Entries, 1)
}

func (s *EnrollmentServiceSuite) TestCancelTwiceRejected() {
	s.setupFixtures(0)
	ctx := s.GetContext()

	_, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.NoError(err)
	s.NoError(s.service.Cancel(ctx, &dto.CancelEnrollmentRequest{CustomerID: "acc_cust", ProgramID: "prog_1"}))

	err = s.service.Cancel(ctx, &dto.CancelEnrollmentRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *EnrollmentServiceSuite) TestReenrollReactivatesWithoutSecondBonus() {
	s.setupFixtures(50)
	ctx := s.GetContext()

	first, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.NoError(err)
	s.NoError(s.service.Cancel(ctx, &dto.CancelEnrollmentRequest{CustomerID: "acc_cust", ProgramID: "prog_1"}))

	second, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.NoError(err)

	// same row, same balance, no second welcome bonus
	s.Equal(first.ID, second.ID)
	s.Equal(types.EnrollmentStatusActive, second.EnrollmentStatus)

	balance, err := s.ledgerService.CurrentBalance(ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(50), balance.Balance)

	entries, err := s.ledgerService.ListEntries(ctx, &types.LedgerEntryFilter{
		CustomerID: "acc_cust",
		ProgramID:  "prog_1",
	})
	s.NoError(err)
	s.Len(entries.Entries, 1)
}

func (s *EnrollmentServiceSuite) TestListProgramsFor() {
	s.setupFixtures(0)
	ctx := s.GetContext()

	prog2 := newTestProgram(ctx, "prog_2", "acc_biz")
	prog2.Name = "Lunch Card"
	s.NoError(s.GetStores().ProgramRepo.Create(ctx, prog2))

	_, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.NoError(err)
	_, err = s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_2"})
	s.NoError(err)

	listed, err := s.service.ListProgramsFor(ctx, "acc_cust")
	s.NoError(err)
	s.Len(listed, 2)
}

func (s *EnrollmentServiceSuite) TestListProgramsForShowsCancelledStatus() {
	s.setupFixtures(0)
	ctx := s.GetContext()

	_, err := s.service.Enroll(ctx, &dto.EnrollRequest{CustomerID: "acc_cust", ProgramID: "prog_1"})
	s.NoError(err)
	s.NoError(s.service.Cancel(ctx, &dto.CancelEnrollmentRequest{CustomerID: "acc_cust", ProgramID: "prog_1"}))

	listed, err := s.service.ListProgramsFor(ctx, "acc_cust")
	s.NoError(err)
	s.Len(listed, 1)
	s.Equal(types.EnrollmentStatusCancelled, listed[0].Status)
}
