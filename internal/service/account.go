package service

import (
	"context"

	"github.com/gudcity/loyalty/internal/api/dto"
	"github.com/gudcity/loyalty/internal/types"
)

// AccountService creates and reads customer and business accounts. Staff
// accounts go through StaffService instead.
type AccountService interface {
	CreateAccount(ctx context.Context, req *dto.CreateAccountRequest) (*dto.AccountResponse, error)
	GetAccount(ctx context.Context, id string) (*dto.AccountResponse, error)
}

type accountService struct {
	ServiceParams
}

func NewAccountService(params ServiceParams) AccountService {
	return &accountService{ServiceParams: params}
}

func (s *accountService) CreateAccount(ctx context.Context, req *dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a := req.ToAccount(types.GetDefaultBaseModel(ctx))
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.AccountRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.Infow("account created",
		"account_id", a.ID,
		"role", a.Role,
	)

	return dto.ToAccountResponse(a), nil
}

func (s *accountService) GetAccount(ctx context.Context, id string) (*dto.AccountResponse, error) {
	a, err := s.AccountRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToAccountResponse(a), nil
}
