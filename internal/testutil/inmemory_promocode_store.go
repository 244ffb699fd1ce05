package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gudcity/loyalty/internal/domain/promocode"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// InMemoryPromoCodeStore implements promocode.Repository for testing.
// Consume is a compare-and-set under the store lock, matching the
// database CAS semantics.
type InMemoryPromoCodeStore struct {
	mu    sync.Mutex
	codes map[string]*promocode.PromoCode
}

func NewInMemoryPromoCodeStore() *InMemoryPromoCodeStore {
	return &InMemoryPromoCodeStore{
		codes: make(map[string]*promocode.PromoCode),
	}
}

func (s *InMemoryPromoCodeStore) Create(ctx context.Context, p *promocode.PromoCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.codes[p.ID]; exists {
		return ierr.NewError("promo code already exists").
			WithHintf("Promo code with ID %s already exists", p.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	for _, existing := range s.codes {
		if existing.BusinessID == p.BusinessID && existing.Code == p.Code &&
			existing.Status != types.StatusDeleted {
			return ierr.NewError("promo code already exists").
				WithHintf("A promo code '%s' already exists for this business", p.Code).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	copied := *p
	s.codes[p.ID] = &copied
	return nil
}

func (s *InMemoryPromoCodeStore) Get(ctx context.Context, id string) (*promocode.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.codes[id]
	if !exists || p.Status == types.StatusDeleted {
		return nil, ierr.NewError("promo code not found").
			WithHintf("Promo code with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	copied := *p
	return &copied, nil
}

func (s *InMemoryPromoCodeStore) GetByCode(ctx context.Context, businessID, code string) (*promocode.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.codes {
		if p.BusinessID == businessID && p.Code == code && p.Status != types.StatusDeleted {
			copied := *p
			return &copied, nil
		}
	}

	return nil, ierr.NewError("promo code not found").
		WithHintf("Promo code '%s' was not found", code).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPromoCodeStore) FindByCode(ctx context.Context, code string) ([]*promocode.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []*promocode.PromoCode
	for _, p := range s.codes {
		if p.Code == code && p.Status != types.StatusDeleted {
			copied := *p
			candidates = append(candidates, &copied)
		}
	}
	if len(candidates) == 0 {
		return nil, ierr.NewError("promo code not found").
			WithHintf("Promo code '%s' was not found", code).
			Mark(ierr.ErrNotFound)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates, nil
}

func (s *InMemoryPromoCodeStore) ListByBusiness(ctx context.Context, businessID string) ([]*promocode.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*promocode.PromoCode
	for _, p := range s.codes {
		if p.BusinessID == businessID && p.Status != types.StatusDeleted {
			copied := *p
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *InMemoryPromoCodeStore) Consume(ctx context.Context, id, customerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.codes[id]
	if !exists || p.Status == types.StatusDeleted {
		return ierr.NewError("promo code not found").
			WithHintf("Promo code with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	if p.CodeStatus != types.PromoCodeStatusActive {
		return ierr.NewError("promo code is no longer active").
			WithHint("This promo code has already been redeemed or has expired").
			Mark(ierr.ErrAlreadyExists)
	}

	consumedAt := at
	p.CodeStatus = types.PromoCodeStatusConsumed
	p.ConsumedBy = customerID
	p.ConsumedAt = &consumedAt
	return nil
}

func (s *InMemoryPromoCodeStore) UpdateCodeStatus(ctx context.Context, id string, status types.PromoCodeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.codes[id]
	if !exists || p.Status == types.StatusDeleted {
		return ierr.NewError("promo code not found").
			WithHintf("Promo code with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	p.CodeStatus = status
	return nil
}

func (s *InMemoryPromoCodeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.codes[id]
	if !exists || p.Status == types.StatusDeleted {
		return ierr.NewError("promo code not found").
			WithHintf("Promo code with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	p.Status = types.StatusDeleted
	return nil
}

func (s *InMemoryPromoCodeStore) ExpireDue(ctx context.Context, businessID string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, p := range s.codes {
		if p.BusinessID != businessID || p.Status == types.StatusDeleted {
			continue
		}
		if p.CodeStatus != types.PromoCodeStatusActive {
			continue
		}
		if p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
			p.CodeStatus = types.PromoCodeStatusExpired
			count++
		}
	}
	return count, nil
}

// SetExpiry rewrites a code's expiry. Tests use it to backdate codes so
// expiration sweeps can be exercised without waiting.
func (s *InMemoryPromoCodeStore) SetExpiry(ctx context.Context, id string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.codes[id]
	if !exists {
		return ierr.NewError("promo code not found").
			WithHintf("Promo code with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	p.ExpiresAt = expiresAt
	return nil
}

func (s *InMemoryPromoCodeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = make(map[string]*promocode.PromoCode)
}
