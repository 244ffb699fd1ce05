package dto

import (
	"time"

	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/program"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/gudcity/loyalty/internal/validator"
)

type EnrollRequest struct {
	CustomerID string `json:"customer_id" binding:"required" validate:"required"`
	ProgramID  string `json:"program_id" binding:"required" validate:"required"`
}

func (r *EnrollRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CancelEnrollmentRequest struct {
	CustomerID string `json:"customer_id" binding:"required" validate:"required"`
	ProgramID  string `json:"program_id" binding:"required" validate:"required"`
}

func (r *CancelEnrollmentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type EnrollmentResponse struct {
	*enrollment.Enrollment
}

func ToEnrollmentResponse(e *enrollment.Enrollment) *EnrollmentResponse {
	return &EnrollmentResponse{Enrollment: e}
}

// CustomerProgramResponse is one row of a customer's program listing:
// the enrollment joined with its program and the cached balance.
type CustomerProgramResponse struct {
	ProgramID     string                 `json:"program_id"`
	ProgramName   string                 `json:"program_name"`
	ProgramType   types.ProgramType      `json:"program_type"`
	ProgramStatus types.Status           `json:"program_status"`
	Status        types.EnrollmentStatus `json:"status"`
	Balance       int64                  `json:"balance"`
	EnrolledAt    time.Time              `json:"enrolled_at"`
}

func ToCustomerProgramResponse(e *enrollment.Enrollment, p *program.Program) *CustomerProgramResponse {
	return &CustomerProgramResponse{
		ProgramID:     p.ID,
		ProgramName:   p.Name,
		ProgramType:   p.Type,
		ProgramStatus: p.Status,
		Status:        e.EnrollmentStatus,
		Balance:       e.Balance,
		EnrolledAt:    e.EnrolledAt,
	}
}
