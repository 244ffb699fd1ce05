package service

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/api/dto"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	webhookDto "github.com/gudcity/loyalty/internal/webhook/dto"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// EnrollmentService manages customer memberships in loyalty programs.
type EnrollmentService interface {
	Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	Cancel(ctx context.Context, req *dto.CancelEnrollmentRequest) error
	ListProgramsFor(ctx context.Context, customerID string) ([]*dto.CustomerProgramResponse, error)

	// CancelByProgram cancels every active enrollment of a program and
	// returns the affected rows with the balances they held. It runs in
	// the caller's transaction and publishes nothing; program deletion
	// composes it with its own notifications.
	CancelByProgram(ctx context.Context, programID string) ([]*enrollment.Enrollment, error)
}

type enrollmentService struct {
	ServiceParams
}

func NewEnrollmentService(params ServiceParams) EnrollmentService {
	return &enrollmentService{ServiceParams: params}
}

// Enroll joins a customer to an active program. Re-enrolling after a
// cancellation reactivates the original row so ledger history is kept;
// the welcome bonus is only granted on first enrollment.
func (s *enrollmentService) Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.AccountRepo.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	if customer.Role != types.AccountRoleCustomer {
		return nil, ierr.NewError("only customers can enroll").
			WithHintf("Account '%s' is not a customer account", customer.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	prog, err := s.ProgramRepo.Get(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}

	if !prog.IsActive() {
		return nil, ierr.NewError("program is not accepting enrollments").
			WithHint("The program is inactive or has been deleted").
			Mark(ierr.ErrInvalidOperation)
	}

	var (
		enr     *enrollment.Enrollment
		granted int64
	)
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.EnrollmentRepo.Get(txCtx, req.CustomerID, req.ProgramID)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}

		if existing != nil {
			if existing.IsActive() {
				return ierr.NewError("customer is already enrolled").
					WithHint("The customer already has an active membership in this program").
					WithReportableDetails(map[string]interface{}{
						"customer_id": req.CustomerID,
						"program_id":  req.ProgramID,
					}).
					Mark(ierr.ErrAlreadyExists)
			}

			if err := s.EnrollmentRepo.Reactivate(txCtx, existing.ID); err != nil {
				return err
			}
			existing.EnrollmentStatus = types.EnrollmentStatusActive
			enr = existing
			return nil
		}

		enr = &enrollment.Enrollment{
			ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ENROLLMENT),
			CustomerID:       req.CustomerID,
			ProgramID:        req.ProgramID,
			BusinessID:       prog.BusinessID,
			EnrollmentStatus: types.EnrollmentStatusActive,
			EnrolledAt:       time.Now().UTC(),
			BaseModel:        types.GetDefaultBaseModel(txCtx),
		}
		if err := enr.Validate(); err != nil {
			return err
		}
		if err := s.EnrollmentRepo.Create(txCtx, enr); err != nil {
			return err
		}

		if prog.WelcomeBonus > 0 {
			ledgerService := NewLedgerService(s.ServiceParams)
			balance, err := ledgerService.Credit(txCtx, req.CustomerID, req.ProgramID,
				prog.WelcomeBonus, types.LedgerSourceWelcomeBonus, "welcome bonus", prog.ID)
			if err != nil {
				return err
			}
			enr.Balance = balance.Balance
			granted = prog.WelcomeBonus
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("customer enrolled",
		"customer_id", req.CustomerID,
		"program_id", req.ProgramID,
		"welcome_bonus", granted,
	)

	s.publishWebhookEvent(ctx, types.WebhookEventCustomerEnrolled, &webhookDto.EnrollmentWebhookPayload{
		EventType:    types.WebhookEventCustomerEnrolled,
		CustomerID:   req.CustomerID,
		ProgramID:    req.ProgramID,
		ProgramName:  prog.Name,
		WelcomeBonus: granted,
	})

	return dto.ToEnrollmentResponse(enr), nil
}

// Cancel ends a customer's membership. The enrollment row and its ledger
// history are kept.
func (s *enrollmentService) Cancel(ctx context.Context, req *dto.CancelEnrollmentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	enr, err := s.EnrollmentRepo.Get(ctx, req.CustomerID, req.ProgramID)
	if err != nil {
		return err
	}

	if !enr.IsActive() {
		return ierr.NewError("enrollment is not active").
			WithHint("The membership has already been cancelled").
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.EnrollmentRepo.UpdateStatus(ctx, enr.ID, types.EnrollmentStatusCancelled); err != nil {
		return err
	}

	s.Logger.Infow("enrollment cancelled",
		"customer_id", req.CustomerID,
		"program_id", req.ProgramID,
	)

	s.publishWebhookEvent(ctx, types.WebhookEventEnrollmentCanceled, &webhookDto.EnrollmentWebhookPayload{
		EventType:  types.WebhookEventEnrollmentCanceled,
		CustomerID: req.CustomerID,
		ProgramID:  req.ProgramID,
	})

	return nil
}

// ListProgramsFor returns the customer's memberships joined with their
// programs, most recently joined first. Cancelled memberships and deleted
// programs stay visible with their status so history is not hidden.
func (s *enrollmentService) ListProgramsFor(ctx context.Context, customerID string) ([]*dto.CustomerProgramResponse, error) {
	enrollments, err := s.EnrollmentRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.CustomerProgramResponse, 0, len(enrollments))
	for _, enr := range enrollments {
		prog, err := s.ProgramRepo.Get(ctx, enr.ProgramID)
		if err != nil {
			if ierr.IsNotFound(err) {
				s.Logger.Warnw("enrollment references missing program",
					"enrollment_id", enr.ID, "program_id", enr.ProgramID)
				continue
			}
			return nil, err
		}
		responses = append(responses, dto.ToCustomerProgramResponse(enr, prog))
	}

	return responses, nil
}

func (s *enrollmentService) CancelByProgram(ctx context.Context, programID string) ([]*enrollment.Enrollment, error) {
	active, err := s.EnrollmentRepo.ListActiveByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	for _, enr := range active {
		if err := s.EnrollmentRepo.UpdateStatus(ctx, enr.ID, types.EnrollmentStatusCancelled); err != nil {
			return nil, err
		}
	}

	return active, nil
}
