package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gudcity/loyalty/internal/config"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/ledger"
	"github.com/gudcity/loyalty/internal/domain/promocode"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// GormStoreTestSuite runs the repositories against an in-memory sqlite
// database so unique indexes, compare-and-set updates and transaction
// rollbacks are exercised by a real SQL engine.
type GormStoreTestSuite struct {
	suite.Suite
	ctx    context.Context
	db     *gorm.DB
	client postgres.IClient
	log    *logger.Logger

	enrollments enrollment.Repository
	entries     ledger.Repository
	promoCodes  promocode.Repository
}

func TestGormStoreSuite(t *testing.T) {
	suite.Run(t, new(GormStoreTestSuite))
}

func (s *GormStoreTestSuite) SetupSuite() {
	cfg := &config.Configuration{
		Logging: config.LoggingConfig{Level: types.LogLevelInfo},
	}
	log, err := logger.NewLogger(cfg)
	s.Require().NoError(err)
	s.log = log
}

func (s *GormStoreTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)
	s.Require().NoError(postgres.Migrate(db))

	s.db = db
	s.client = postgres.NewClient(db, s.log)
	s.enrollments = NewEnrollmentRepository(s.client, s.log)
	s.entries = NewLedgerRepository(s.client, s.log)
	s.promoCodes = NewPromoCodeRepository(s.client, s.log)

	ctx := context.Background()
	ctx = types.SetTenantID(ctx, types.DefaultTenantID)
	ctx = types.SetActorID(ctx, types.DefaultActorID)
	s.ctx = ctx
}

func (s *GormStoreTestSuite) newEnrollment(customerID, programID string) *enrollment.Enrollment {
	return &enrollment.Enrollment{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ENROLLMENT),
		CustomerID:       customerID,
		ProgramID:        programID,
		BusinessID:       "acc_biz",
		EnrollmentStatus: types.EnrollmentStatusActive,
		EnrolledAt:       time.Now().UTC(),
		BaseModel:        types.GetDefaultBaseModel(s.ctx),
	}
}

func (s *GormStoreTestSuite) newEntry(customerID, programID string, points int64) *ledger.Entry {
	available := points
	if available < 0 {
		available = 0
	}
	return &ledger.Entry{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		CustomerID:      customerID,
		ProgramID:       programID,
		Points:          points,
		PointsAvailable: available,
		Source:          types.LedgerSourceAward,
		BaseModel:       types.GetDefaultBaseModel(s.ctx),
	}
}

func (s *GormStoreTestSuite) newPromoCode(code string) *promocode.PromoCode {
	return &promocode.PromoCode{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROMO_CODE),
		BusinessID: "acc_biz",
		Code:       code,
		Name:       "Launch bonus",
		Type:       types.PromoCodeTypePoints,
		Value:      decimal.NewFromInt(25),
		CodeStatus: types.PromoCodeStatusActive,
		BaseModel:  types.GetDefaultBaseModel(s.ctx),
	}
}

func (s *GormStoreTestSuite) TestEnrollmentPairUniqueIndex() {
	s.NoError(s.enrollments.Create(s.ctx, s.newEnrollment("acc_cust", "prog_1")))

	err := s.enrollments.Create(s.ctx, s.newEnrollment("acc_cust", "prog_1"))
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	// Same customer in another program is fine.
	s.NoError(s.enrollments.Create(s.ctx, s.newEnrollment("acc_cust", "prog_2")))
}

func (s *GormStoreTestSuite) TestEnrollmentPairUniquenessIsTenantScoped() {
	s.NoError(s.enrollments.Create(s.ctx, s.newEnrollment("acc_cust", "prog_1")))

	// The same pair under another tenant is a different membership.
	otherCtx := types.SetActorID(types.SetTenantID(context.Background(), "tenant_2"), types.DefaultActorID)
	e := s.newEnrollment("acc_cust", "prog_1")
	e.BaseModel = types.GetDefaultBaseModel(otherCtx)
	s.NoError(s.enrollments.Create(otherCtx, e))

	got, err := s.enrollments.Get(otherCtx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(e.ID, got.ID)
}

func (s *GormStoreTestSuite) TestEnrollmentBalanceRoundTrip() {
	e := s.newEnrollment("acc_cust", "prog_1")
	s.NoError(s.enrollments.Create(s.ctx, e))
	s.NoError(s.enrollments.UpdateBalance(s.ctx, e.ID, 120))

	got, err := s.enrollments.Get(s.ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(120), got.Balance)
}

func (s *GormStoreTestSuite) TestLedgerSumAndEligibleOrdering() {
	first := s.newEntry("acc_cust", "prog_1", 100)
	first.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	second := s.newEntry("acc_cust", "prog_1", 50)
	s.NoError(s.entries.CreateEntry(s.ctx, first))
	s.NoError(s.entries.CreateEntry(s.ctx, second))

	sum, err := s.entries.SumEntries(s.ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(int64(150), sum)

	eligible, err := s.entries.FindEligiblePoints(s.ctx, "acc_cust", "prog_1", time.Now().UTC())
	s.NoError(err)
	s.Require().Len(eligible, 2)
	s.Equal(first.ID, eligible[0].ID, "oldest award must be consumed first")
}

func (s *GormStoreTestSuite) TestConsumePointsDecrementsOldestFirst() {
	first := s.newEntry("acc_cust", "prog_1", 100)
	first.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	second := s.newEntry("acc_cust", "prog_1", 50)
	s.NoError(s.entries.CreateEntry(s.ctx, first))
	s.NoError(s.entries.CreateEntry(s.ctx, second))

	eligible, err := s.entries.FindEligiblePoints(s.ctx, "acc_cust", "prog_1", time.Now().UTC())
	s.Require().NoError(err)
	s.NoError(s.entries.ConsumePoints(s.ctx, eligible, 120))

	gotFirst, err := s.entries.GetEntry(s.ctx, first.ID)
	s.NoError(err)
	s.Equal(int64(0), gotFirst.PointsAvailable)

	gotSecond, err := s.entries.GetEntry(s.ctx, second.ID)
	s.NoError(err)
	s.Equal(int64(30), gotSecond.PointsAvailable)
}

func (s *GormStoreTestSuite) TestConsumePointsShortfall() {
	e := s.newEntry("acc_cust", "prog_1", 40)
	s.NoError(s.entries.CreateEntry(s.ctx, e))

	eligible, err := s.entries.FindEligiblePoints(s.ctx, "acc_cust", "prog_1", time.Now().UTC())
	s.Require().NoError(err)

	err = s.entries.ConsumePoints(s.ctx, eligible, 60)
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))
}

func (s *GormStoreTestSuite) TestFindExpiredPoints() {
	past := time.Now().UTC().Add(-time.Hour)
	expired := s.newEntry("acc_cust", "prog_1", 100)
	expired.ExpiresAt = &past
	fresh := s.newEntry("acc_cust", "prog_1", 50)
	s.NoError(s.entries.CreateEntry(s.ctx, expired))
	s.NoError(s.entries.CreateEntry(s.ctx, fresh))

	due, err := s.entries.FindExpiredPoints(s.ctx, "prog_1", time.Now().UTC())
	s.NoError(err)
	s.Require().Len(due, 1)
	s.Equal(expired.ID, due[0].ID)

	eligible, err := s.entries.FindEligiblePoints(s.ctx, "acc_cust", "prog_1", time.Now().UTC())
	s.NoError(err)
	s.Require().Len(eligible, 1)
	s.Equal(fresh.ID, eligible[0].ID)
}

func (s *GormStoreTestSuite) TestPromoCodeUniquePerBusiness() {
	s.NoError(s.promoCodes.Create(s.ctx, s.newPromoCode("GC-LAUNCH")))

	err := s.promoCodes.Create(s.ctx, s.newPromoCode("GC-LAUNCH"))
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	other := s.newPromoCode("GC-LAUNCH")
	other.BusinessID = "acc_other"
	s.NoError(s.promoCodes.Create(s.ctx, other))
}

func (s *GormStoreTestSuite) TestFindByCodeReturnsAllIssuersOldestFirst() {
	older := s.newPromoCode("GC-SHARED")
	older.BusinessID = "acc_other"
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := s.newPromoCode("GC-SHARED")
	s.NoError(s.promoCodes.Create(s.ctx, older))
	s.NoError(s.promoCodes.Create(s.ctx, newer))

	found, err := s.promoCodes.FindByCode(s.ctx, "GC-SHARED")
	s.NoError(err)
	s.Require().Len(found, 2)
	s.Equal(older.ID, found[0].ID)
	s.Equal(newer.ID, found[1].ID)

	_, err = s.promoCodes.FindByCode(s.ctx, "GC-MISSING")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *GormStoreTestSuite) TestPromoCodeConsumeIsCompareAndSet() {
	pc := s.newPromoCode("GC-ONCE")
	s.NoError(s.promoCodes.Create(s.ctx, pc))

	now := time.Now().UTC()
	s.NoError(s.promoCodes.Consume(s.ctx, pc.ID, "acc_cust", now))

	err := s.promoCodes.Consume(s.ctx, pc.ID, "acc_other", now)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	got, err := s.promoCodes.Get(s.ctx, pc.ID)
	s.NoError(err)
	s.Equal(types.PromoCodeStatusConsumed, got.CodeStatus)
	s.Equal("acc_cust", got.ConsumedBy)
}

func (s *GormStoreTestSuite) TestPromoCodeExpireDueSweep() {
	past := time.Now().UTC().Add(-time.Hour)
	stale := s.newPromoCode("GC-STALE")
	stale.ExpiresAt = &past
	live := s.newPromoCode("GC-LIVE")
	s.NoError(s.promoCodes.Create(s.ctx, stale))
	s.NoError(s.promoCodes.Create(s.ctx, live))

	count, err := s.promoCodes.ExpireDue(s.ctx, "acc_biz", time.Now().UTC())
	s.NoError(err)
	s.Equal(1, count)

	got, err := s.promoCodes.Get(s.ctx, stale.ID)
	s.NoError(err)
	s.Equal(types.PromoCodeStatusExpired, got.CodeStatus)

	got, err = s.promoCodes.Get(s.ctx, live.ID)
	s.NoError(err)
	s.Equal(types.PromoCodeStatusActive, got.CodeStatus)
}

func (s *GormStoreTestSuite) TestWithTxRollsBackOnError() {
	e := s.newEnrollment("acc_cust", "prog_1")

	err := s.client.WithTx(s.ctx, func(txCtx context.Context) error {
		if err := s.enrollments.Create(txCtx, e); err != nil {
			return err
		}
		return ierr.NewError("boom").Mark(ierr.ErrSystem)
	})
	s.Error(err)

	_, err = s.enrollments.Get(s.ctx, "acc_cust", "prog_1")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *GormStoreTestSuite) TestNestedWithTxJoinsOuterTransaction() {
	e := s.newEnrollment("acc_cust", "prog_1")

	err := s.client.WithTx(s.ctx, func(outerCtx context.Context) error {
		return s.client.WithTx(outerCtx, func(innerCtx context.Context) error {
			return s.enrollments.Create(innerCtx, e)
		})
	})
	s.NoError(err)

	got, err := s.enrollments.Get(s.ctx, "acc_cust", "prog_1")
	s.NoError(err)
	s.Equal(e.ID, got.ID)
}
