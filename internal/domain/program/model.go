package program

import (
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/shopspring/decimal"
)

// Program represents a loyalty program exclusively owned by one business
type Program struct {
	ID          string            `db:"id" json:"id" gorm:"primaryKey"`
	BusinessID  string            `db:"business_id" json:"business_id" gorm:"index"`
	Name        string            `db:"name" json:"name"`
	Description string            `db:"description" json:"description"`
	Type        types.ProgramType `db:"type" json:"type"`
	// PointValue is the ratio between spend units and points, e.g. a ratio
	// of 1 means 1 unit spent earns 1 point.
	PointValue decimal.Decimal `db:"point_value" json:"point_value" gorm:"type:decimal(20,8)"`
	// ExpirationDays is the number of days awarded points stay redeemable.
	// 0 means points never expire.
	ExpirationDays int `db:"expiration_days" json:"expiration_days"`
	// WelcomeBonus points are granted through the ledger on enrollment.
	WelcomeBonus int64         `db:"welcome_bonus" json:"welcome_bonus"`
	Tiers        []*RewardTier `db:"-" json:"tiers,omitempty" gorm:"-"`
	types.BaseModel
}

func (p *Program) TableName() string {
	return "programs"
}

func (p *Program) Validate() error {
	if !p.Type.Validate() {
		return ierr.NewError("invalid program type").
			WithHint("Program type must be one of points, stamps, cashback").
			WithReportableDetails(map[string]interface{}{
				"type": p.Type,
			}).
			Mark(ierr.ErrValidation)
	}

	if p.PointValue.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("point value must be greater than 0").
			WithHint("Point value ratio must be a positive value").
			WithReportableDetails(map[string]interface{}{
				"point_value": p.PointValue,
			}).
			Mark(ierr.ErrValidation)
	}

	if p.ExpirationDays < 0 {
		return ierr.NewError("expiration days must not be negative").
			WithHint("Use 0 for points that never expire").
			Mark(ierr.ErrValidation)
	}

	if p.WelcomeBonus < 0 {
		return ierr.NewError("welcome bonus must not be negative").
			WithHint("Welcome bonus points must be 0 or more").
			Mark(ierr.ErrValidation)
	}

	for _, tier := range p.Tiers {
		if err := tier.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// IsActive reports whether the program accepts new enrollments and awards.
func (p *Program) IsActive() bool {
	return p.Status == types.StatusActive
}
