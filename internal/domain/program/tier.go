package program

import (
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// RewardTier is a (threshold, reward) pair configured per program. Edits
// only affect future redemptions; historical ledger entries stay untouched.
type RewardTier struct {
	ID        string `db:"id" json:"id" gorm:"primaryKey"`
	ProgramID string `db:"program_id" json:"program_id" gorm:"index"`
	// Threshold is the point count debited when the tier is redeemed.
	Threshold int64  `db:"threshold" json:"threshold"`
	Reward    string `db:"reward" json:"reward"`
	types.BaseModel
}

func (t *RewardTier) TableName() string {
	return "reward_tiers"
}

func (t *RewardTier) Validate() error {
	if t.Threshold <= 0 {
		return ierr.NewError("tier threshold must be greater than 0").
			WithHint("Reward tier threshold must be a positive point count").
			WithReportableDetails(map[string]interface{}{
				"threshold": t.Threshold,
			}).
			Mark(ierr.ErrValidation)
	}

	if t.Reward == "" {
		return ierr.NewError("tier reward is required").
			WithHint("Reward tier description must not be empty").
			Mark(ierr.ErrValidation)
	}

	return nil
}
