package dto

import (
	"github.com/gudcity/loyalty/internal/domain/program"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/gudcity/loyalty/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateProgramRequest struct {
	BusinessID     string               `json:"business_id" binding:"required" validate:"required"`
	Name           string               `json:"name" binding:"required" validate:"required"`
	Description    string               `json:"description"`
	Type           types.ProgramType    `json:"type" binding:"required" validate:"required"`
	PointValue     decimal.Decimal      `json:"point_value"`
	ExpirationDays int                  `json:"expiration_days"`
	WelcomeBonus   int64                `json:"welcome_bonus"`
	Tiers          []CreateTierRequest  `json:"tiers,omitempty"`
}

type CreateTierRequest struct {
	Threshold int64  `json:"threshold" binding:"required" validate:"required"`
	Reward    string `json:"reward" binding:"required" validate:"required"`
}

func (r *CreateProgramRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToProgram builds the domain program, defaulting the point-value ratio
// to 1 when not supplied.
func (r *CreateProgramRequest) ToProgram(baseModel types.BaseModel) *program.Program {
	pointValue := r.PointValue
	if pointValue.IsZero() {
		pointValue = decimal.NewFromInt(1)
	}

	p := &program.Program{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROGRAM),
		BusinessID:     r.BusinessID,
		Name:           r.Name,
		Description:    r.Description,
		Type:           r.Type,
		PointValue:     pointValue,
		ExpirationDays: r.ExpirationDays,
		WelcomeBonus:   r.WelcomeBonus,
		BaseModel:      baseModel,
	}

	for _, tr := range r.Tiers {
		p.Tiers = append(p.Tiers, &program.RewardTier{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REWARD_TIER),
			ProgramID: p.ID,
			Threshold: tr.Threshold,
			Reward:    tr.Reward,
			BaseModel: baseModel,
		})
	}

	return p
}

type UpdateProgramRequest struct {
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	PointValue     *decimal.Decimal `json:"point_value,omitempty"`
	ExpirationDays *int             `json:"expiration_days,omitempty"`
	WelcomeBonus   *int64           `json:"welcome_bonus,omitempty"`
}

func (r *UpdateProgramRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.PointValue == nil &&
		r.ExpirationDays == nil && r.WelcomeBonus == nil {
		return ierr.NewError("no fields to update").
			WithHint("At least one field must be provided").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type UpdateTierRequest struct {
	Threshold *int64  `json:"threshold,omitempty"`
	Reward    *string `json:"reward,omitempty"`
}

type ProgramResponse struct {
	*program.Program
}

func ToProgramResponse(p *program.Program) *ProgramResponse {
	return &ProgramResponse{Program: p}
}
