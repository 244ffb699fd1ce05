package service

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/api/dto"
	"github.com/gudcity/loyalty/internal/domain/account"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/samber/lo"
)

// StaffService manages a business's staff accounts and their permission
// sets. Every operation here requires the owner-only manage-staff action.
type StaffService interface {
	CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.AccountResponse, error)
	ListStaff(ctx context.Context, businessID string) ([]*dto.AccountResponse, error)
	UpdateStaffPermissions(ctx context.Context, staffID string, req *dto.UpdateStaffPermissionsRequest) (*dto.AccountResponse, error)
	RevokeStaff(ctx context.Context, staffID string) error
}

type staffService struct {
	ServiceParams
}

func NewStaffService(params ServiceParams) StaffService {
	return &staffService{ServiceParams: params}
}

func (s *staffService) CreateStaff(ctx context.Context, req *dto.CreateStaffRequest) (*dto.AccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkPermission(ctx, types.ActionManageStaff, req.BusinessID); err != nil {
		return nil, err
	}

	owner, err := s.AccountRepo.Get(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if owner.Role != types.AccountRoleBusiness {
		return nil, ierr.NewError("staff must belong to a business").
			WithHintf("Account '%s' is not a business account", req.BusinessID).
			Mark(ierr.ErrInvalidOperation)
	}

	staff := req.ToAccount(types.GetDefaultBaseModel(ctx))
	if err := staff.Validate(); err != nil {
		return nil, err
	}

	if err := s.AccountRepo.Create(ctx, staff); err != nil {
		return nil, err
	}

	s.Logger.Infow("staff account created",
		"staff_id", staff.ID,
		"business_id", req.BusinessID,
	)

	return dto.ToAccountResponse(staff), nil
}

func (s *staffService) ListStaff(ctx context.Context, businessID string) ([]*dto.AccountResponse, error) {
	if err := s.checkPermission(ctx, types.ActionManageStaff, businessID); err != nil {
		return nil, err
	}

	accounts, err := s.AccountRepo.ListByBusiness(ctx, businessID, types.AccountRoleStaff)
	if err != nil {
		return nil, err
	}

	return lo.Map(accounts, func(a *account.Account, _ int) *dto.AccountResponse {
		return dto.ToAccountResponse(a)
	}), nil
}

func (s *staffService) UpdateStaffPermissions(ctx context.Context, staffID string, req *dto.UpdateStaffPermissionsRequest) (*dto.AccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	staff, err := s.AccountRepo.Get(ctx, staffID)
	if err != nil {
		return nil, err
	}

	if staff.Role != types.AccountRoleStaff {
		return nil, ierr.NewError("account is not a staff account").
			WithHintf("Account '%s' is not staff", staffID).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.checkPermission(ctx, types.ActionManageStaff, staff.BusinessID); err != nil {
		return nil, err
	}

	staff.Permissions = req.Permissions
	staff.UpdatedAt = time.Now().UTC()
	staff.UpdatedBy = types.GetActorID(ctx)

	if err := s.AccountRepo.Update(ctx, staff); err != nil {
		return nil, err
	}

	s.Logger.Infow("staff permissions updated",
		"staff_id", staffID,
		"business_id", staff.BusinessID,
	)

	return dto.ToAccountResponse(staff), nil
}

// RevokeStaff deactivates a staff account. Inactive staff fail every
// permission check at the auth layer because no actor is built for them.
func (s *staffService) RevokeStaff(ctx context.Context, staffID string) error {
	staff, err := s.AccountRepo.Get(ctx, staffID)
	if err != nil {
		return err
	}

	if staff.Role != types.AccountRoleStaff {
		return ierr.NewError("account is not a staff account").
			WithHintf("Account '%s' is not staff", staffID).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.checkPermission(ctx, types.ActionManageStaff, staff.BusinessID); err != nil {
		return err
	}

	if err := s.AccountRepo.UpdateStatus(ctx, staffID, types.StatusInactive); err != nil {
		return err
	}

	s.Logger.Infow("staff account revoked",
		"staff_id", staffID,
		"business_id", staff.BusinessID,
	)
	return nil
}
