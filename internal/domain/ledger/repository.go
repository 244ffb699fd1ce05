package ledger

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/types"
)

// Repository defines the interface for ledger persistence operations.
// Entries are append-only: there are no update or delete operations.
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, id string) (*Entry, error)
	ListEntries(ctx context.Context, f *types.LedgerEntryFilter) ([]*Entry, error)

	// SumEntries recomputes the balance from history. It must always match
	// the cached counter on the enrollment row.
	SumEntries(ctx context.Context, customerID, programID string) (int64, error)

	// FindEligiblePoints returns positive entries with unconsumed points,
	// not expired as of now, oldest first.
	FindEligiblePoints(ctx context.Context, customerID, programID string, now time.Time) ([]*Entry, error)

	// ConsumePoints reduces PointsAvailable across the given entries by
	// amount, oldest first.
	ConsumePoints(ctx context.Context, entries []*Entry, amount int64) error

	// FindExpiredPoints returns positive entries whose expiry has passed
	// but that still carry unconsumed points.
	FindExpiredPoints(ctx context.Context, programID string, now time.Time) ([]*Entry, error)
}
