package permission

import (
	"github.com/gudcity/loyalty/internal/types"
)

// Evaluator decides whether an actor may perform an action against a
// business. It is pure: no I/O, no locking, never an error. Callers are
// responsible for logging denied attempts and surfacing them as
// permission-denied errors.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// CanPerform reports whether the actor may perform the action against the
// target business.
//
// Admins may do anything. Business owners may do anything on their own
// business. Staff are confined to their owning business and to the flags
// on their permission set; owner-only actions are never grantable to
// staff regardless of flags.
func (e *Evaluator) CanPerform(actor *types.Actor, action types.Action, targetBusinessID string) bool {
	if actor == nil || !action.Validate() {
		return false
	}

	switch actor.Role {
	case types.AccountRoleAdmin:
		return true

	case types.AccountRoleBusiness:
		// A business account's BusinessID is its own ID.
		return actor.BusinessID != "" && actor.BusinessID == targetBusinessID

	case types.AccountRoleStaff:
		if action.IsOwnerOnly() {
			return false
		}
		if actor.BusinessID == "" || actor.BusinessID != targetBusinessID {
			return false
		}
		return actor.Permissions.Has(action)

	default:
		return false
	}
}
