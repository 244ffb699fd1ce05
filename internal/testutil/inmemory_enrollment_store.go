package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/gudcity/loyalty/internal/domain/enrollment"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// InMemoryEnrollmentStore implements enrollment.Repository for testing.
// The (customer, program) pair is unique, mirroring the database index.
type InMemoryEnrollmentStore struct {
	mu          sync.RWMutex
	enrollments map[string]*enrollment.Enrollment
	byPair      map[string]string
}

func NewInMemoryEnrollmentStore() *InMemoryEnrollmentStore {
	return &InMemoryEnrollmentStore{
		enrollments: make(map[string]*enrollment.Enrollment),
		byPair:      make(map[string]string),
	}
}

func pairKey(customerID, programID string) string {
	return customerID + "|" + programID
}

func (s *InMemoryEnrollmentStore) Create(ctx context.Context, e *enrollment.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(e.CustomerID, e.ProgramID)
	if _, exists := s.byPair[key]; exists {
		return ierr.NewError("enrollment already exists").
			WithHint("The customer already has an enrollment in this program").
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *e
	s.enrollments[e.ID] = &copied
	s.byPair[key] = e.ID
	return nil
}

func (s *InMemoryEnrollmentStore) Get(ctx context.Context, customerID, programID string) (*enrollment.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getByPairLocked(customerID, programID)
}

// GetForUpdate behaves like Get; serialization comes from the mock
// transaction lock.
func (s *InMemoryEnrollmentStore) GetForUpdate(ctx context.Context, customerID, programID string) (*enrollment.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getByPairLocked(customerID, programID)
}

func (s *InMemoryEnrollmentStore) getByPairLocked(customerID, programID string) (*enrollment.Enrollment, error) {
	id, exists := s.byPair[pairKey(customerID, programID)]
	if !exists {
		return nil, ierr.NewError("enrollment not found").
			WithHint("No enrollment exists for this customer and program").
			Mark(ierr.ErrNotFound)
	}

	copied := *s.enrollments[id]
	return &copied, nil
}

func (s *InMemoryEnrollmentStore) ListByCustomer(ctx context.Context, customerID string) ([]*enrollment.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*enrollment.Enrollment
	for _, e := range s.enrollments {
		if e.CustomerID == customerID {
			copied := *e
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EnrolledAt.After(result[j].EnrolledAt)
	})
	return result, nil
}

func (s *InMemoryEnrollmentStore) ListActiveByProgram(ctx context.Context, programID string) ([]*enrollment.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*enrollment.Enrollment
	for _, e := range s.enrollments {
		if e.ProgramID == programID && e.EnrollmentStatus == types.EnrollmentStatusActive {
			copied := *e
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EnrolledAt.Before(result[j].EnrolledAt)
	})
	return result, nil
}

func (s *InMemoryEnrollmentStore) HasActiveForBusiness(ctx context.Context, customerID, businessID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.enrollments {
		if e.CustomerID == customerID && e.BusinessID == businessID &&
			e.EnrollmentStatus == types.EnrollmentStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryEnrollmentStore) UpdateStatus(ctx context.Context, id string, status types.EnrollmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.enrollments[id]
	if !exists {
		return ierr.NewError("enrollment not found").
			WithHintf("Enrollment with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	e.EnrollmentStatus = status
	return nil
}

func (s *InMemoryEnrollmentStore) UpdateBalance(ctx context.Context, id string, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.enrollments[id]
	if !exists {
		return ierr.NewError("enrollment not found").
			WithHintf("Enrollment with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	e.Balance = balance
	return nil
}

func (s *InMemoryEnrollmentStore) Reactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.enrollments[id]
	if !exists {
		return ierr.NewError("enrollment not found").
			WithHintf("Enrollment with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	e.EnrollmentStatus = types.EnrollmentStatusActive
	return nil
}

func (s *InMemoryEnrollmentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments = make(map[string]*enrollment.Enrollment)
	s.byPair = make(map[string]string)
}
