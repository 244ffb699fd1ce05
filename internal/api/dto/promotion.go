package dto

import (
	"time"

	"github.com/gudcity/loyalty/internal/domain/promocode"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/gudcity/loyalty/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePromoCodeRequest struct {
	BusinessID string              `json:"business_id" binding:"required" validate:"required"`
	Code       string              `json:"code,omitempty"`
	Name       string              `json:"name" binding:"required" validate:"required"`
	Type       types.PromoCodeType `json:"type" binding:"required" validate:"required"`
	Value      decimal.Decimal     `json:"value" binding:"required"`
	Currency   string              `json:"currency,omitempty"`
	ProgramID  string              `json:"program_id,omitempty"`
	ExpiresAt  *time.Time          `json:"expires_at,omitempty"`
}

func (r *CreatePromoCodeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToPromoCode builds the domain promo code, generating a prefixed short
// code when the caller did not supply one.
func (r *CreatePromoCodeRequest) ToPromoCode(baseModel types.BaseModel) *promocode.PromoCode {
	code := r.Code
	if code == "" {
		code = types.GenerateShortCode(types.SHORT_CODE_PREFIX_PROMO)
	}

	return &promocode.PromoCode{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROMO_CODE),
		BusinessID: r.BusinessID,
		Code:       code,
		Name:       r.Name,
		Type:       r.Type,
		Value:      r.Value,
		Currency:   r.Currency,
		ProgramID:  r.ProgramID,
		CodeStatus: types.PromoCodeStatusActive,
		ExpiresAt:  r.ExpiresAt,
		BaseModel:  baseModel,
	}
}

type RedeemCodeRequest struct {
	CustomerID string `json:"customer_id" binding:"required" validate:"required"`
	Code       string `json:"code" binding:"required" validate:"required"`
}

func (r *RedeemCodeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type RedeemRewardRequest struct {
	CustomerID string `json:"customer_id" binding:"required" validate:"required"`
	ProgramID  string `json:"program_id" binding:"required" validate:"required"`
	TierID     string `json:"tier_id" binding:"required" validate:"required"`
}

func (r *RedeemRewardRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// RedemptionResult is returned to the caller after a promo code has been
// consumed so the point of sale can apply the granted value.
type RedemptionResult struct {
	PromoCodeID string              `json:"promo_code_id"`
	Name        string              `json:"name"`
	Type        types.PromoCodeType `json:"type"`
	Value       decimal.Decimal     `json:"value"`
	Currency    string              `json:"currency,omitempty"`
}

type PromoCodeResponse struct {
	*promocode.PromoCode
}

func ToPromoCodeResponse(pc *promocode.PromoCode) *PromoCodeResponse {
	return &PromoCodeResponse{PromoCode: pc}
}
