package dto

import (
	"github.com/gudcity/loyalty/internal/domain/ledger"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/validator"
)

type AwardPointsRequest struct {
	CustomerID  string `json:"customer_id" binding:"required" validate:"required"`
	ProgramID   string `json:"program_id" binding:"required" validate:"required"`
	Points      int64  `json:"points" binding:"required" validate:"required,gt=0"`
	Description string `json:"description"`
	ReferenceID string `json:"reference_id"`
}

func (r *AwardPointsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Points <= 0 {
		return ierr.NewError("points must be positive").
			WithHint("Award amounts must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AdjustPointsRequest carries a signed correction. Positive values credit
// the customer, negative values debit them.
type AdjustPointsRequest struct {
	CustomerID  string `json:"customer_id" binding:"required" validate:"required"`
	ProgramID   string `json:"program_id" binding:"required" validate:"required"`
	Points      int64  `json:"points" binding:"required" validate:"required"`
	Description string `json:"description"`
	ReferenceID string `json:"reference_id"`
}

func (r *AdjustPointsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Points == 0 {
		return ierr.NewError("points must be non-zero").
			WithHint("Adjustments must credit or debit a non-zero amount").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type BalanceResponse struct {
	CustomerID string `json:"customer_id"`
	ProgramID  string `json:"program_id"`
	Balance    int64  `json:"balance"`
}

type LedgerEntryResponse struct {
	*ledger.Entry
}

type ListLedgerEntriesResponse struct {
	Entries []*ledger.Entry `json:"entries"`
	Total   int             `json:"total"`
}
