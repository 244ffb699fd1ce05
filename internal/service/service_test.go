package service

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/cache"
	"github.com/gudcity/loyalty/internal/domain/account"
	"github.com/gudcity/loyalty/internal/domain/program"
	"github.com/gudcity/loyalty/internal/permission"
	"github.com/gudcity/loyalty/internal/testutil"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/shopspring/decimal"
)

// newTestServiceParams wires services to the suite's in-memory stores.
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Evaluator:        permission.NewEvaluator(),
		Cache:            cache.GetInMemoryCache(),
		AccountRepo:      stores.AccountRepo,
		ProgramRepo:      stores.ProgramRepo,
		EnrollmentRepo:   stores.EnrollmentRepo,
		LedgerRepo:       stores.LedgerRepo,
		PromoCodeRepo:    stores.PromoCodeRepo,
		WebhookPublisher: s.GetWebhookPublisher(),
	}
}

func newTestBusiness(ctx context.Context, id string) *account.Account {
	return &account.Account{
		ID:         id,
		Name:       "Test Business",
		Email:      id + "@example.com",
		Role:       types.AccountRoleBusiness,
		BusinessID: id,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

func newTestCustomer(ctx context.Context, id string) *account.Account {
	return &account.Account{
		ID:        id,
		Name:      "Test Customer",
		Email:     id + "@example.com",
		Role:      types.AccountRoleCustomer,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

func newTestStaff(ctx context.Context, id, businessID string, perms types.PermissionSet) *account.Account {
	return &account.Account{
		ID:          id,
		Name:        "Test Staff",
		Email:       id + "@example.com",
		Role:        types.AccountRoleStaff,
		BusinessID:  businessID,
		Permissions: perms,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

func newTestProgram(ctx context.Context, id, businessID string) *program.Program {
	return &program.Program{
		ID:         id,
		BusinessID: businessID,
		Name:       "Coffee Club",
		Type:       types.ProgramTypePoints,
		PointValue: decimal.NewFromInt(1),
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

func businessActor(id string) *types.Actor {
	return &types.Actor{
		ID:         id,
		Role:       types.AccountRoleBusiness,
		BusinessID: id,
	}
}

func staffActor(id, businessID string, perms types.PermissionSet) *types.Actor {
	return &types.Actor{
		ID:          id,
		Role:        types.AccountRoleStaff,
		BusinessID:  businessID,
		Permissions: perms,
	}
}

func daysFromNow(days int) *time.Time {
	t := time.Now().UTC().AddDate(0, 0, days)
	return &t
}
