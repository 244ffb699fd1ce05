package service

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/api/dto"
	"github.com/gudcity/loyalty/internal/cache"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/program"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
	webhookDto "github.com/gudcity/loyalty/internal/webhook/dto"
	"github.com/samber/lo"
)

// ProgramService manages program lifecycle: creation, updates, reward
// tiers and deletion with its enrollment cascade.
type ProgramService interface {
	CreateProgram(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error)
	GetProgram(ctx context.Context, id string) (*dto.ProgramResponse, error)
	ListPrograms(ctx context.Context, businessID string) ([]*dto.ProgramResponse, error)
	UpdateProgram(ctx context.Context, id string, req *dto.UpdateProgramRequest) (*dto.ProgramResponse, error)
	DeleteProgram(ctx context.Context, id string) error

	AddRewardTier(ctx context.Context, programID string, req *dto.CreateTierRequest) (*program.RewardTier, error)
	UpdateRewardTier(ctx context.Context, tierID string, req *dto.UpdateTierRequest) (*program.RewardTier, error)
	RemoveRewardTier(ctx context.Context, tierID string) error
}

type programService struct {
	ServiceParams
}

func NewProgramService(params ServiceParams) ProgramService {
	return &programService{ServiceParams: params}
}

func (s *programService) CreateProgram(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkPermission(ctx, types.ActionCreateProgram, req.BusinessID); err != nil {
		return nil, err
	}

	owner, err := s.AccountRepo.Get(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if owner.Role != types.AccountRoleBusiness {
		return nil, ierr.NewError("programs must be owned by a business").
			WithHintf("Account '%s' is not a business account", req.BusinessID).
			Mark(ierr.ErrInvalidOperation)
	}

	p := req.ToProgram(types.GetDefaultBaseModel(ctx))
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.ProgramRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("program created",
		"program_id", p.ID,
		"business_id", p.BusinessID,
		"type", p.Type,
	)

	return dto.ToProgramResponse(p), nil
}

func (s *programService) GetProgram(ctx context.Context, id string) (*dto.ProgramResponse, error) {
	key := cache.GenerateKey(cache.PrefixProgram, types.GetTenantID(ctx), id)
	if cached, found := s.Cache.Get(ctx, key); found {
		if p, ok := cached.(*program.Program); ok {
			return dto.ToProgramResponse(p), nil
		}
	}

	p, err := s.ProgramRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, key, p, 5*time.Minute)
	return dto.ToProgramResponse(p), nil
}

func (s *programService) ListPrograms(ctx context.Context, businessID string) ([]*dto.ProgramResponse, error) {
	programs, err := s.ProgramRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	return lo.Map(programs, func(p *program.Program, _ int) *dto.ProgramResponse {
		return dto.ToProgramResponse(p)
	}), nil
}

// UpdateProgram applies partial updates. The owning business can never
// change; there is deliberately no field for it.
func (s *programService) UpdateProgram(ctx context.Context, id string, req *dto.UpdateProgramRequest) (*dto.ProgramResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.ProgramRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkPermission(ctx, types.ActionEditProgram, p.BusinessID); err != nil {
		return nil, err
	}

	if p.Status == types.StatusDeleted {
		return nil, ierr.NewError("program has been deleted").
			WithHint("Deleted programs cannot be updated").
			Mark(ierr.ErrInvalidOperation)
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.PointValue != nil {
		p.PointValue = *req.PointValue
	}
	if req.ExpirationDays != nil {
		p.ExpirationDays = *req.ExpirationDays
	}
	if req.WelcomeBonus != nil {
		p.WelcomeBonus = *req.WelcomeBonus
	}
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = types.GetActorID(ctx)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.ProgramRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	return dto.ToProgramResponse(p), nil
}

// DeleteProgram soft deletes the program and cancels every active
// enrollment in one transaction. Each affected customer is then notified
// with the balance they held at deletion time.
func (s *programService) DeleteProgram(ctx context.Context, id string) error {
	p, err := s.ProgramRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.checkPermission(ctx, types.ActionDeleteProgram, p.BusinessID); err != nil {
		return err
	}

	if p.Status == types.StatusDeleted {
		return ierr.NewError("program has already been deleted").
			WithHint("The program was deleted earlier").
			Mark(ierr.ErrInvalidOperation)
	}

	var cancelled []*enrollment.Enrollment
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.ProgramRepo.UpdateStatus(txCtx, id, types.StatusDeleted); err != nil {
			return err
		}

		enrollmentService := NewEnrollmentService(s.ServiceParams)
		cancelled, err = enrollmentService.CancelByProgram(txCtx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("program deleted",
		"program_id", id,
		"business_id", p.BusinessID,
		"cancelled_enrollments", len(cancelled),
	)

	for _, enr := range cancelled {
		s.publishWebhookEvent(ctx, types.WebhookEventProgramDeleted, &webhookDto.ProgramDeletedWebhookPayload{
			EventType:    types.WebhookEventProgramDeleted,
			CustomerID:   enr.CustomerID,
			ProgramID:    id,
			ProgramName:  p.Name,
			PriorBalance: enr.Balance,
		})
	}

	s.invalidateCache(ctx, id)
	return nil
}

func (s *programService) AddRewardTier(ctx context.Context, programID string, req *dto.CreateTierRequest) (*program.RewardTier, error) {
	p, err := s.ProgramRepo.Get(ctx, programID)
	if err != nil {
		return nil, err
	}

	if err := s.checkPermission(ctx, types.ActionEditProgram, p.BusinessID); err != nil {
		return nil, err
	}

	tier := &program.RewardTier{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REWARD_TIER),
		ProgramID: programID,
		Threshold: req.Threshold,
		Reward:    req.Reward,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := tier.Validate(); err != nil {
		return nil, err
	}

	if err := s.ProgramRepo.CreateTier(ctx, tier); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, programID)
	return tier, nil
}

func (s *programService) UpdateRewardTier(ctx context.Context, tierID string, req *dto.UpdateTierRequest) (*program.RewardTier, error) {
	tier, err := s.ProgramRepo.GetTier(ctx, tierID)
	if err != nil {
		return nil, err
	}

	p, err := s.ProgramRepo.Get(ctx, tier.ProgramID)
	if err != nil {
		return nil, err
	}

	if err := s.checkPermission(ctx, types.ActionEditProgram, p.BusinessID); err != nil {
		return nil, err
	}

	if req.Threshold != nil {
		tier.Threshold = *req.Threshold
	}
	if req.Reward != nil {
		tier.Reward = *req.Reward
	}
	tier.UpdatedAt = time.Now().UTC()
	tier.UpdatedBy = types.GetActorID(ctx)

	if err := tier.Validate(); err != nil {
		return nil, err
	}
	if err := s.ProgramRepo.UpdateTier(ctx, tier); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, tier.ProgramID)
	return tier, nil
}

func (s *programService) RemoveRewardTier(ctx context.Context, tierID string) error {
	tier, err := s.ProgramRepo.GetTier(ctx, tierID)
	if err != nil {
		return err
	}

	p, err := s.ProgramRepo.Get(ctx, tier.ProgramID)
	if err != nil {
		return err
	}

	if err := s.checkPermission(ctx, types.ActionEditProgram, p.BusinessID); err != nil {
		return err
	}

	if err := s.ProgramRepo.DeleteTier(ctx, tierID); err != nil {
		return err
	}

	s.invalidateCache(ctx, tier.ProgramID)
	return nil
}

func (s *programService) invalidateCache(ctx context.Context, programID string) {
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixProgram, types.GetTenantID(ctx), programID))
}
