package ledger

import (
	"time"

	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// Entry is one immutable record in the points ledger. The balance of a
// (customer, program) pair is the sum of its entries' Points deltas.
type Entry struct {
	ID         string `db:"id" json:"id" gorm:"primaryKey"`
	CustomerID string `db:"customer_id" json:"customer_id" gorm:"index:idx_ledger_pair"`
	ProgramID  string `db:"program_id" json:"program_id" gorm:"index:idx_ledger_pair"`
	// Points is the signed delta this entry applies to the balance.
	Points int64              `db:"points" json:"points"`
	Source types.LedgerSource `db:"source" json:"source" gorm:"index"`
	// PointsAvailable is the unconsumed remainder of a positive entry.
	// Debits consume it oldest-first; expiration sweeps zero it out.
	PointsAvailable int64  `db:"points_available" json:"points_available"`
	Description     string `db:"description" json:"description"`
	// ReferenceID links the entry to what produced it, e.g. a promo code
	// or reward tier id.
	ReferenceID string `db:"reference_id" json:"reference_id,omitempty"`
	// ExpiresAt is stamped from the program's expiration window at award
	// time; nil when points never expire.
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	// BalanceAfter snapshots the cached balance after this entry applied.
	BalanceAfter int64 `db:"balance_after" json:"balance_after"`
	types.BaseModel
}

func (e *Entry) TableName() string {
	return "ledger_entries"
}

func (e *Entry) Validate() error {
	if e.Points == 0 {
		return ierr.NewError("ledger entry delta must not be zero").
			WithHint("A ledger entry must change the balance").
			Mark(ierr.ErrValidation)
	}

	if !e.Source.Validate() {
		return ierr.NewError("invalid ledger source").
			WithHint("Source must be one of award, redemption, expiration, adjustment, welcome_bonus").
			WithReportableDetails(map[string]interface{}{
				"source": e.Source,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsExpired reports whether the entry's points are past their expiry at t.
func (e *Entry) IsExpired(t time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(t)
}
