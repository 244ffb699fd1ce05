package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/gudcity/loyalty/internal/domain/program"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// InMemoryProgramStore implements program.Repository for testing
type InMemoryProgramStore struct {
	mu       sync.RWMutex
	programs map[string]*program.Program
	tiers    map[string]*program.RewardTier
}

func NewInMemoryProgramStore() *InMemoryProgramStore {
	return &InMemoryProgramStore{
		programs: make(map[string]*program.Program),
		tiers:    make(map[string]*program.RewardTier),
	}
}

func (s *InMemoryProgramStore) Create(ctx context.Context, p *program.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.programs[p.ID]; exists {
		return ierr.NewError("program already exists").
			WithHintf("Program with ID %s already exists", p.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *p
	copied.Tiers = nil
	s.programs[p.ID] = &copied

	for _, t := range p.Tiers {
		tierCopy := *t
		s.tiers[t.ID] = &tierCopy
	}
	return nil
}

func (s *InMemoryProgramStore) Get(ctx context.Context, id string) (*program.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.programs[id]
	if !exists {
		return nil, ierr.NewError("program not found").
			WithHintf("Program with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	copied := *p
	copied.Tiers = s.listTiersLocked(id)
	return &copied, nil
}

func (s *InMemoryProgramStore) ListByBusiness(ctx context.Context, businessID string) ([]*program.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*program.Program
	for _, p := range s.programs {
		if p.BusinessID == businessID && p.Status != types.StatusDeleted {
			copied := *p
			copied.Tiers = s.listTiersLocked(p.ID)
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *InMemoryProgramStore) Update(ctx context.Context, p *program.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.programs[p.ID]; !exists {
		return ierr.NewError("program not found").
			WithHintf("Program with ID %s was not found", p.ID).
			Mark(ierr.ErrNotFound)
	}

	copied := *p
	copied.Tiers = nil
	s.programs[p.ID] = &copied
	return nil
}

func (s *InMemoryProgramStore) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.programs[id]
	if !exists {
		return ierr.NewError("program not found").
			WithHintf("Program with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	p.Status = status
	return nil
}

func (s *InMemoryProgramStore) GetTier(ctx context.Context, tierID string) (*program.RewardTier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tiers[tierID]
	if !exists || t.Status == types.StatusDeleted {
		return nil, ierr.NewError("reward tier not found").
			WithHintf("Reward tier with ID %s was not found", tierID).
			Mark(ierr.ErrNotFound)
	}

	copied := *t
	return &copied, nil
}

func (s *InMemoryProgramStore) ListTiers(ctx context.Context, programID string) ([]*program.RewardTier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTiersLocked(programID), nil
}

func (s *InMemoryProgramStore) listTiersLocked(programID string) []*program.RewardTier {
	var result []*program.RewardTier
	for _, t := range s.tiers {
		if t.ProgramID == programID && t.Status != types.StatusDeleted {
			copied := *t
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Threshold < result[j].Threshold
	})
	return result
}

func (s *InMemoryProgramStore) CreateTier(ctx context.Context, t *program.RewardTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tiers[t.ID]; exists {
		return ierr.NewError("reward tier already exists").
			WithHintf("Reward tier with ID %s already exists", t.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *t
	s.tiers[t.ID] = &copied
	return nil
}

func (s *InMemoryProgramStore) UpdateTier(ctx context.Context, t *program.RewardTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tiers[t.ID]; !exists {
		return ierr.NewError("reward tier not found").
			WithHintf("Reward tier with ID %s was not found", t.ID).
			Mark(ierr.ErrNotFound)
	}

	copied := *t
	s.tiers[t.ID] = &copied
	return nil
}

func (s *InMemoryProgramStore) DeleteTier(ctx context.Context, tierID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tiers[tierID]
	if !exists {
		return ierr.NewError("reward tier not found").
			WithHintf("Reward tier with ID %s was not found", tierID).
			Mark(ierr.ErrNotFound)
	}

	t.Status = types.StatusDeleted
	return nil
}

func (s *InMemoryProgramStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs = make(map[string]*program.Program)
	s.tiers = make(map[string]*program.RewardTier)
}
