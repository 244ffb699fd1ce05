package types

// Action is one of the fixed set of permission-gated operations an actor
// can attempt against a business.
type Action string

const (
	ActionCreateProgram   Action = "create_program"
	ActionEditProgram     Action = "edit_program"
	ActionDeleteProgram   Action = "delete_program"
	ActionCreatePromotion Action = "create_promotion"
	ActionDeletePromotion Action = "delete_promotion"
	ActionManageStaff     Action = "manage_staff"
	ActionAccessSettings  Action = "access_settings"
	ActionScanQR          Action = "scan_qr"
	ActionAwardPoints     Action = "award_points"
)

// ownerOnlyActions can never be granted to staff, regardless of the flags
// on their permission set.
var ownerOnlyActions = map[Action]bool{
	ActionDeleteProgram:   true,
	ActionDeletePromotion: true,
	ActionManageStaff:     true,
	ActionAccessSettings:  true,
}

// IsOwnerOnly reports whether the action is reserved for the owning
// business account.
func (a Action) IsOwnerOnly() bool {
	return ownerOnlyActions[a]
}

func (a Action) Validate() bool {
	switch a {
	case ActionCreateProgram, ActionEditProgram, ActionDeleteProgram,
		ActionCreatePromotion, ActionDeletePromotion, ActionManageStaff,
		ActionAccessSettings, ActionScanQR, ActionAwardPoints:
		return true
	default:
		return false
	}
}
