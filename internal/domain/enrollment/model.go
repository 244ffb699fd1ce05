package enrollment

import (
	"time"

	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// Enrollment links a customer to a loyalty program. At most one row exists
// per (customer, program) pair; cancelling keeps the row and its history,
// re-enrolling reactivates it.
type Enrollment struct {
	ID string `db:"id" json:"id" gorm:"primaryKey"`
	// The tenant-scoped unique index over (customer_id, program_id) is
	// created in postgres.Migrate.
	CustomerID string `db:"customer_id" json:"customer_id" gorm:"index"`
	ProgramID  string `db:"program_id" json:"program_id" gorm:"index"`
	// BusinessID denormalizes the program's owner so promo redemption can
	// check business-scoped membership without a join.
	BusinessID       string                 `db:"business_id" json:"business_id" gorm:"index"`
	EnrollmentStatus types.EnrollmentStatus `db:"enrollment_status" json:"enrollment_status" gorm:"index"`
	// Balance is the cached point counter. It must always equal the sum of
	// the pair's ledger entry deltas; both are written in one transaction.
	Balance    int64     `db:"balance" json:"balance"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
	types.BaseModel
}

func (e *Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) Validate() error {
	if e.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("customer_id is required").
			Mark(ierr.ErrValidation)
	}

	if e.ProgramID == "" {
		return ierr.NewError("program_id is required").
			WithHint("program_id is required").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsActive reports whether the membership is currently active.
func (e *Enrollment) IsActive() bool {
	return e.EnrollmentStatus == types.EnrollmentStatusActive
}
