package promocode

import (
	"time"

	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/shopspring/decimal"
)

// PromoCode is a single-use code issued by a business. It transitions
// active -> consumed exactly once; concurrent redemptions must not both
// succeed.
type PromoCode struct {
	ID string `db:"id" json:"id" gorm:"primaryKey"`
	// Codes are unique per (business, code) within a tenant; the index is
	// created in postgres.Migrate.
	BusinessID string `db:"business_id" json:"business_id" gorm:"index"`
	Code       string `db:"code" json:"code" gorm:"index"`
	Name       string `db:"name" json:"name"`
	Type       types.PromoCodeType `db:"type" json:"type"`
	// Value is the points granted, discount amount or cashback amount,
	// depending on Type.
	Value    decimal.Decimal `db:"value" json:"value" gorm:"type:decimal(20,8)"`
	Currency string          `db:"currency" json:"currency"`
	// ProgramID optionally binds the code to one program; points-type codes
	// without a binding credit the customer's oldest active enrollment in
	// the business.
	ProgramID  string                `db:"program_id" json:"program_id,omitempty" gorm:"index"`
	CodeStatus types.PromoCodeStatus `db:"code_status" json:"code_status" gorm:"index"`
	ExpiresAt  *time.Time            `db:"expires_at" json:"expires_at,omitempty"`
	// ConsumedBy records the redeeming customer once consumed.
	ConsumedBy string     `db:"consumed_by" json:"consumed_by,omitempty"`
	ConsumedAt *time.Time `db:"consumed_at" json:"consumed_at,omitempty"`
	types.BaseModel
}

func (p *PromoCode) TableName() string {
	return "promo_codes"
}

func (p *PromoCode) Validate() error {
	if !p.Type.Validate() {
		return ierr.NewError("invalid promo code type").
			WithHint("Promo code type must be one of points, discount, cashback").
			WithReportableDetails(map[string]interface{}{
				"type": p.Type,
			}).
			Mark(ierr.ErrValidation)
	}

	if p.Value.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("promo code value must be greater than 0").
			WithHint("Promo code value must be a positive amount").
			WithReportableDetails(map[string]interface{}{
				"value": p.Value,
			}).
			Mark(ierr.ErrValidation)
	}

	if p.Type == types.PromoCodeTypePoints && !p.Value.IsInteger() {
		return ierr.NewError("points value must be a whole number").
			WithHint("Points-type promo codes must grant a whole point count").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsRedeemable reports whether the code can still be consumed at t.
func (p *PromoCode) IsRedeemable(t time.Time) bool {
	if p.CodeStatus != types.PromoCodeStatusActive {
		return false
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(t) {
		return false
	}
	return true
}
