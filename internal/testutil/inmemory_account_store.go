package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/gudcity/loyalty/internal/domain/account"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// InMemoryAccountStore implements account.Repository for testing
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		accounts: make(map[string]*account.Account),
	}
}

func (s *InMemoryAccountStore) Create(ctx context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return ierr.NewError("account already exists").
			WithHintf("Account with ID %s already exists", a.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *a
	s.accounts[a.ID] = &copied
	return nil
}

func (s *InMemoryAccountStore) Get(ctx context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.accounts[id]
	if !exists {
		return nil, ierr.NewError("account not found").
			WithHintf("Account with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	copied := *a
	return &copied, nil
}

func (s *InMemoryAccountStore) ListByBusiness(ctx context.Context, businessID string, role types.AccountRole) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*account.Account
	for _, a := range s.accounts {
		if a.BusinessID == businessID && a.Role == role && a.Status != types.StatusDeleted {
			copied := *a
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *InMemoryAccountStore) Update(ctx context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; !exists {
		return ierr.NewError("account not found").
			WithHintf("Account with ID %s was not found", a.ID).
			Mark(ierr.ErrNotFound)
	}

	copied := *a
	s.accounts[a.ID] = &copied
	return nil
}

func (s *InMemoryAccountStore) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.accounts[id]
	if !exists {
		return ierr.NewError("account not found").
			WithHintf("Account with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	a.Status = status
	return nil
}

func (s *InMemoryAccountStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*account.Account)
}
