package enrollment

import (
	"context"

	"github.com/gudcity/loyalty/internal/types"
)

// Repository defines the interface for enrollment persistence operations.
// GetForUpdate and UpdateBalance participate in ledger transactions: the
// row is locked so a balance check and the matching entry insert form one
// atomic unit.
type Repository interface {
	Create(ctx context.Context, e *Enrollment) error
	Get(ctx context.Context, customerID, programID string) (*Enrollment, error)
	GetForUpdate(ctx context.Context, customerID, programID string) (*Enrollment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Enrollment, error)
	ListActiveByProgram(ctx context.Context, programID string) ([]*Enrollment, error)
	HasActiveForBusiness(ctx context.Context, customerID, businessID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status types.EnrollmentStatus) error
	UpdateBalance(ctx context.Context, id string, balance int64) error
	Reactivate(ctx context.Context, id string) error
}
