package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AccountRole is the role of a principal in the system
type AccountRole string

const (
	AccountRoleCustomer AccountRole = "customer"
	AccountRoleBusiness AccountRole = "business"
	AccountRoleStaff    AccountRole = "staff"
	AccountRoleAdmin    AccountRole = "admin"
)

func (r AccountRole) Validate() bool {
	switch r {
	case AccountRoleCustomer, AccountRoleBusiness, AccountRoleStaff, AccountRoleAdmin:
		return true
	default:
		return false
	}
}

// PermissionSet holds the per-action flags grantable to a staff account.
// Owner-only actions intentionally have no flag here.
type PermissionSet struct {
	CreateProgram   bool `json:"create_program"`
	EditProgram     bool `json:"edit_program"`
	CreatePromotion bool `json:"create_promotion"`
	ScanQR          bool `json:"scan_qr"`
	AwardPoints     bool `json:"award_points"`
}

// Has reports whether the set grants the given action.
func (p PermissionSet) Has(action Action) bool {
	switch action {
	case ActionCreateProgram:
		return p.CreateProgram
	case ActionEditProgram:
		return p.EditProgram
	case ActionCreatePromotion:
		return p.CreatePromotion
	case ActionScanQR:
		return p.ScanQR
	case ActionAwardPoints:
		return p.AwardPoints
	default:
		return false
	}
}

// Value implements driver.Valuer so the set is stored as a JSON column.
func (p PermissionSet) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for the JSON column.
func (p *PermissionSet) Scan(value interface{}) error {
	if value == nil {
		*p = PermissionSet{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported type for permission set: %T", value)
	}
}

// Actor is the authenticated principal attempting an action, supplied by
// the caller's auth layer.
type Actor struct {
	ID string `json:"id"`
	// Role of the principal
	Role AccountRole `json:"role"`
	// BusinessID is the business the actor belongs to: the account's own ID
	// for business owners, the owning business for staff, empty otherwise.
	BusinessID string `json:"business_id,omitempty"`
	// Permissions is only consulted for staff actors.
	Permissions PermissionSet `json:"permissions,omitempty"`
}
