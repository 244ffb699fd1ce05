package permission

import (
	"testing"

	"github.com/gudcity/loyalty/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCanPerform(t *testing.T) {
	evaluator := NewEvaluator()

	admin := &types.Actor{ID: "acc_admin", Role: types.AccountRoleAdmin}
	owner := &types.Actor{ID: "acc_biz", Role: types.AccountRoleBusiness, BusinessID: "acc_biz"}
	customer := &types.Actor{ID: "acc_cust", Role: types.AccountRoleCustomer}

	fullStaff := &types.Actor{
		ID:         "acc_staff",
		Role:       types.AccountRoleStaff,
		BusinessID: "acc_biz",
		Permissions: types.PermissionSet{
			CreateProgram:   true,
			EditProgram:     true,
			CreatePromotion: true,
			ScanQR:          true,
			AwardPoints:     true,
		},
	}
	limitedStaff := &types.Actor{
		ID:         "acc_staff2",
		Role:       types.AccountRoleStaff,
		BusinessID: "acc_biz",
		Permissions: types.PermissionSet{
			ScanQR:      true,
			AwardPoints: true,
		},
	}

	tests := []struct {
		name     string
		actor    *types.Actor
		action   types.Action
		business string
		want     bool
	}{
		{"admin can do anything", admin, types.ActionDeleteProgram, "acc_biz", true},
		{"admin on any business", admin, types.ActionManageStaff, "acc_other", true},

		{"owner creates program on own business", owner, types.ActionCreateProgram, "acc_biz", true},
		{"owner deletes program on own business", owner, types.ActionDeleteProgram, "acc_biz", true},
		{"owner manages staff on own business", owner, types.ActionManageStaff, "acc_biz", true},
		{"owner denied on other business", owner, types.ActionCreateProgram, "acc_other", false},
		{"owner denied deleting on other business", owner, types.ActionDeleteProgram, "acc_other", false},

		{"staff with flag creates program", fullStaff, types.ActionCreateProgram, "acc_biz", true},
		{"staff with flag awards points", fullStaff, types.ActionAwardPoints, "acc_biz", true},
		{"staff never deletes program", fullStaff, types.ActionDeleteProgram, "acc_biz", false},
		{"staff never deletes promotion", fullStaff, types.ActionDeletePromotion, "acc_biz", false},
		{"staff never manages staff", fullStaff, types.ActionManageStaff, "acc_biz", false},
		{"staff never accesses settings", fullStaff, types.ActionAccessSettings, "acc_biz", false},
		{"staff denied on other business", fullStaff, types.ActionCreateProgram, "acc_other", false},

		{"staff without flag denied", limitedStaff, types.ActionCreateProgram, "acc_biz", false},
		{"staff with scan flag allowed", limitedStaff, types.ActionScanQR, "acc_biz", true},
		{"staff with award flag allowed", limitedStaff, types.ActionAwardPoints, "acc_biz", true},

		{"customer denied everything", customer, types.ActionScanQR, "acc_biz", false},
		{"nil actor denied", nil, types.ActionCreateProgram, "acc_biz", false},
		{"unknown action denied", admin, types.Action("reboot_system"), "acc_biz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluator.CanPerform(tt.actor, tt.action, tt.business)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaffWithoutBusinessDenied(t *testing.T) {
	evaluator := NewEvaluator()

	orphan := &types.Actor{
		ID:          "acc_staff",
		Role:        types.AccountRoleStaff,
		Permissions: types.PermissionSet{ScanQR: true},
	}

	assert.False(t, evaluator.CanPerform(orphan, types.ActionScanQR, "acc_biz"))
	assert.False(t, evaluator.CanPerform(orphan, types.ActionScanQR, ""))
}
