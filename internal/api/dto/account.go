package dto

import (
	"github.com/gudcity/loyalty/internal/domain/account"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/gudcity/loyalty/internal/validator"
)

type CreateAccountRequest struct {
	Name  string            `json:"name" binding:"required" validate:"required"`
	Email string            `json:"email" binding:"required,email" validate:"required,email"`
	Role  types.AccountRole `json:"role" binding:"required" validate:"required"`
}

func (r *CreateAccountRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Role.Validate() {
		return ierr.NewError("invalid account role").
			WithHintf("Unknown role '%s'", r.Role).
			Mark(ierr.ErrValidation)
	}
	// Staff accounts are created through the staff management flow so
	// they are always attached to a business.
	if r.Role == types.AccountRoleStaff {
		return ierr.NewError("staff accounts require a business").
			WithHint("Use the staff endpoints to create staff accounts").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateAccountRequest) ToAccount(baseModel types.BaseModel) *account.Account {
	a := &account.Account{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ACCOUNT),
		Name:      r.Name,
		Email:     r.Email,
		Role:      r.Role,
		BaseModel: baseModel,
	}
	if r.Role == types.AccountRoleBusiness {
		a.BusinessID = a.ID
	}
	return a
}
