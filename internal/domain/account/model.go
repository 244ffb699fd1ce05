package account

import (
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// Account represents any principal in the system: a customer, a business
// owner, a staff member, or an admin.
type Account struct {
	ID    string            `db:"id" json:"id" gorm:"primaryKey"`
	Name  string            `db:"name" json:"name"`
	Email string            `db:"email" json:"email" gorm:"index"`
	Role  types.AccountRole `db:"role" json:"role" gorm:"index"`
	// BusinessID is the owning business for staff accounts. Ownership is
	// never transferred, only revoked via a status change.
	BusinessID string `db:"business_id" json:"business_id,omitempty" gorm:"index"`
	// Permissions is only meaningful for staff accounts.
	Permissions types.PermissionSet `db:"permissions" json:"permissions" gorm:"type:json"`
	types.BaseModel
}

func (a *Account) TableName() string {
	return "accounts"
}

func (a *Account) Validate() error {
	if !a.Role.Validate() {
		return ierr.NewError("invalid account role").
			WithHint("Account role must be one of customer, business, staff, admin").
			WithReportableDetails(map[string]interface{}{
				"role": a.Role,
			}).
			Mark(ierr.ErrValidation)
	}

	if a.Role == types.AccountRoleStaff && a.BusinessID == "" {
		return ierr.NewError("staff account requires an owning business").
			WithHint("Staff accounts must reference the business that employs them").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Actor builds the permission-evaluation view of the account.
func (a *Account) Actor() *types.Actor {
	businessID := a.BusinessID
	if a.Role == types.AccountRoleBusiness {
		businessID = a.ID
	}

	return &types.Actor{
		ID:          a.ID,
		Role:        a.Role,
		BusinessID:  businessID,
		Permissions: a.Permissions,
	}
}
