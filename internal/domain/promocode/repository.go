package promocode

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/types"
)

// Repository defines the interface for promo code persistence operations
type Repository interface {
	Create(ctx context.Context, p *PromoCode) error
	Get(ctx context.Context, id string) (*PromoCode, error)
	GetByCode(ctx context.Context, businessID, code string) (*PromoCode, error)
	// FindByCode looks the code up across businesses. Codes are only
	// unique per business, so every match is returned, oldest first;
	// callers disambiguate against the redeeming customer's enrollments.
	// Errors with not-found when no business has issued the code.
	FindByCode(ctx context.Context, code string) ([]*PromoCode, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*PromoCode, error)

	// Consume transitions the code from active to consumed on behalf of
	// customerID. It must be a compare-and-set: when the code is no longer
	// active the call fails and no state changes, so exactly one of any
	// concurrent redeemers succeeds.
	Consume(ctx context.Context, id, customerID string, at time.Time) error

	UpdateCodeStatus(ctx context.Context, id string, status types.PromoCodeStatus) error

	// Delete logically removes the code. Consumed codes keep their
	// consumption record.
	Delete(ctx context.Context, id string) error

	// ExpireDue marks active codes past their expiry as expired and
	// returns how many were transitioned.
	ExpireDue(ctx context.Context, businessID string, now time.Time) (int, error)
}
