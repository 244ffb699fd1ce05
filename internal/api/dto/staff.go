package dto

import (
	"github.com/gudcity/loyalty/internal/domain/account"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/gudcity/loyalty/internal/validator"
)

type CreateStaffRequest struct {
	BusinessID  string              `json:"business_id" binding:"required" validate:"required"`
	Name        string              `json:"name" binding:"required" validate:"required"`
	Email       string              `json:"email" binding:"required,email" validate:"required,email"`
	Permissions types.PermissionSet `json:"permissions"`
}

func (r *CreateStaffRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateStaffRequest) ToAccount(baseModel types.BaseModel) *account.Account {
	return &account.Account{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNT),
		Name:        r.Name,
		Email:       r.Email,
		Role:        types.AccountRoleStaff,
		BusinessID:  r.BusinessID,
		Permissions: r.Permissions,
		BaseModel:   baseModel,
	}
}

type UpdateStaffPermissionsRequest struct {
	Permissions types.PermissionSet `json:"permissions"`
}

func (r *UpdateStaffPermissionsRequest) Validate() error {
	return nil
}

type AccountResponse struct {
	*account.Account
}

func ToAccountResponse(a *account.Account) *AccountResponse {
	return &AccountResponse{Account: a}
}
