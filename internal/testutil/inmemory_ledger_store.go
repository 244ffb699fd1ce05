package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/gudcity/loyalty/internal/domain/ledger"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// InMemoryLedgerStore implements ledger.Repository for testing. Entries
// are kept in insertion order so oldest-first consumption is stable even
// when timestamps collide.
type InMemoryLedgerStore struct {
	mu      sync.RWMutex
	entries []*ledger.Entry
	byID    map[string]*ledger.Entry
}

func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		byID: make(map[string]*ledger.Entry),
	}
}

func (s *InMemoryLedgerStore) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[e.ID]; exists {
		return ierr.NewError("ledger entry already exists").
			WithHintf("Ledger entry with ID %s already exists", e.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *e
	s.entries = append(s.entries, &copied)
	s.byID[e.ID] = &copied
	return nil
}

func (s *InMemoryLedgerStore) GetEntry(ctx context.Context, id string) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.byID[id]
	if !exists {
		return nil, ierr.NewError("ledger entry not found").
			WithHintf("Ledger entry with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	copied := *e
	return &copied, nil
}

func (s *InMemoryLedgerStore) ListEntries(ctx context.Context, f *types.LedgerEntryFilter) ([]*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ledger.Entry
	// newest first
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if f.CustomerID != "" && e.CustomerID != f.CustomerID {
			continue
		}
		if f.ProgramID != "" && e.ProgramID != f.ProgramID {
			continue
		}
		if f.Source != "" && e.Source != f.Source {
			continue
		}
		copied := *e
		result = append(result, &copied)
	}

	if f.Offset > 0 {
		if f.Offset >= len(result) {
			return []*ledger.Entry{}, nil
		}
		result = result[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(result) {
		result = result[:f.Limit]
	}
	return result, nil
}

func (s *InMemoryLedgerStore) SumEntries(ctx context.Context, customerID, programID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, e := range s.entries {
		if e.CustomerID == customerID && e.ProgramID == programID {
			sum += e.Points
		}
	}
	return sum, nil
}

func (s *InMemoryLedgerStore) FindEligiblePoints(ctx context.Context, customerID, programID string, now time.Time) ([]*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ledger.Entry
	for _, e := range s.entries {
		if e.CustomerID != customerID || e.ProgramID != programID {
			continue
		}
		if e.Points <= 0 || e.PointsAvailable <= 0 {
			continue
		}
		if e.IsExpired(now) {
			continue
		}
		copied := *e
		result = append(result, &copied)
	}
	return result, nil
}

func (s *InMemoryLedgerStore) ConsumePoints(ctx context.Context, entries []*ledger.Entry, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := amount
	for _, e := range entries {
		if remaining <= 0 {
			break
		}

		stored, exists := s.byID[e.ID]
		if !exists {
			return ierr.NewError("ledger entry not found").
				WithHintf("Ledger entry with ID %s was not found", e.ID).
				Mark(ierr.ErrNotFound)
		}

		consume := stored.PointsAvailable
		if consume > remaining {
			consume = remaining
		}
		stored.PointsAvailable -= consume
		remaining -= consume
	}

	if remaining > 0 {
		return ierr.NewError("insufficient available points").
			WithHint("The given entries do not cover the requested amount").
			Mark(ierr.ErrInsufficientBalance)
	}
	return nil
}

func (s *InMemoryLedgerStore) FindExpiredPoints(ctx context.Context, programID string, now time.Time) ([]*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ledger.Entry
	for _, e := range s.entries {
		if e.ProgramID != programID {
			continue
		}
		if e.Points <= 0 || e.PointsAvailable <= 0 {
			continue
		}
		if !e.IsExpired(now) {
			continue
		}
		copied := *e
		result = append(result, &copied)
	}
	return result, nil
}

// SetExpiry rewrites an entry's expiry. Tests use it to backdate awards
// so expiration sweeps can be exercised without waiting.
func (s *InMemoryLedgerStore) SetExpiry(ctx context.Context, id string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.byID[id]
	if !exists {
		return ierr.NewError("ledger entry not found").
			WithHintf("Ledger entry with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	e.ExpiresAt = expiresAt
	return nil
}

func (s *InMemoryLedgerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = make(map[string]*ledger.Entry)
}
