package service

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/api/dto"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/ledger"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/types"
)

// LedgerService owns the points ledger: every balance change goes through
// it as an immutable entry plus an update of the enrollment's cached
// counter, in one transaction.
type LedgerService interface {
	Award(ctx context.Context, req *dto.AwardPointsRequest) (*dto.BalanceResponse, error)
	Adjust(ctx context.Context, req *dto.AdjustPointsRequest) (*dto.BalanceResponse, error)
	Credit(ctx context.Context, customerID, programID string, points int64, source types.LedgerSource, description, referenceID string) (*dto.BalanceResponse, error)
	Debit(ctx context.Context, customerID, programID string, points int64, source types.LedgerSource, description, referenceID string) (*ledger.Entry, error)
	CurrentBalance(ctx context.Context, customerID, programID string) (*dto.BalanceResponse, error)
	RecomputedBalance(ctx context.Context, customerID, programID string) (int64, error)
	ListEntries(ctx context.Context, f *types.LedgerEntryFilter) (*dto.ListLedgerEntriesResponse, error)
	ExpireDuePoints(ctx context.Context, programID string) (int64, error)
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{ServiceParams: params}
}

// Award credits points to an enrolled customer. The caller must hold the
// award-points permission on the program's business; the entry and the
// cached balance are written together under a row lock on the enrollment.
func (s *ledgerService) Award(ctx context.Context, req *dto.AwardPointsRequest) (*dto.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prog, err := s.ProgramRepo.Get(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}

	if err := s.checkPermission(ctx, types.ActionAwardPoints, prog.BusinessID); err != nil {
		return nil, err
	}

	return s.Credit(ctx, req.CustomerID, req.ProgramID, req.Points, types.LedgerSourceAward, req.Description, req.ReferenceID)
}

// Credit records a positive entry from any source. Callers other than
// Award use it inside larger transactions, e.g. welcome bonuses and promo
// code grants.
func (s *ledgerService) Credit(ctx context.Context, customerID, programID string, points int64, source types.LedgerSource, description, referenceID string) (*dto.BalanceResponse, error) {
	prog, err := s.ProgramRepo.Get(ctx, programID)
	if err != nil {
		return nil, err
	}

	if !prog.IsActive() {
		return nil, ierr.NewError("program is not active").
			WithHint("Points cannot be credited on an inactive program").
			Mark(ierr.ErrInvalidOperation)
	}

	var resp *dto.BalanceResponse
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		enr, err := s.lockActiveEnrollment(txCtx, customerID, programID)
		if err != nil {
			return err
		}

		entry := s.newEntry(txCtx, customerID, programID, points, source, description, referenceID)
		entry.PointsAvailable = points
		if prog.ExpirationDays > 0 {
			expiresAt := time.Now().UTC().AddDate(0, 0, prog.ExpirationDays)
			entry.ExpiresAt = &expiresAt
		}

		newBalance := enr.Balance + points
		entry.BalanceAfter = newBalance

		if err := entry.Validate(); err != nil {
			return err
		}
		if err := s.LedgerRepo.CreateEntry(txCtx, entry); err != nil {
			return err
		}
		if err := s.EnrollmentRepo.UpdateBalance(txCtx, enr.ID, newBalance); err != nil {
			return err
		}

		resp = &dto.BalanceResponse{CustomerID: customerID, ProgramID: programID, Balance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("points credited",
		"customer_id", customerID,
		"program_id", programID,
		"points", points,
		"source", source,
		"balance", resp.Balance,
	)

	return resp, nil
}

// Debit removes points from an enrolled customer, consuming available
// points oldest-first so expiring awards are spent before newer ones.
func (s *ledgerService) Debit(ctx context.Context, customerID, programID string, points int64, source types.LedgerSource, description, referenceID string) (*ledger.Entry, error) {
	if points <= 0 {
		return nil, ierr.NewError("debit amount must be positive").
			WithHint("Debits must remove a positive number of points").
			Mark(ierr.ErrValidation)
	}

	var entry *ledger.Entry
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		enr, err := s.lockActiveEnrollment(txCtx, customerID, programID)
		if err != nil {
			return err
		}

		if enr.Balance < points {
			return ierr.NewError("insufficient points balance").
				WithHintf("The balance of %d points does not cover %d points", enr.Balance, points).
				WithReportableDetails(map[string]interface{}{
					"balance":  enr.Balance,
					"required": points,
				}).
				Mark(ierr.ErrInsufficientBalance)
		}

		now := time.Now().UTC()
		eligible, err := s.LedgerRepo.FindEligiblePoints(txCtx, customerID, programID, now)
		if err != nil {
			return err
		}

		var available int64
		for _, e := range eligible {
			available += e.PointsAvailable
		}
		if available < points {
			return ierr.NewError("insufficient redeemable points").
				WithHintf("Only %d points are currently redeemable", available).
				WithReportableDetails(map[string]interface{}{
					"available": available,
					"required":  points,
				}).
				Mark(ierr.ErrInsufficientBalance)
		}

		if err := s.LedgerRepo.ConsumePoints(txCtx, eligible, points); err != nil {
			return err
		}

		entry = s.newEntry(txCtx, customerID, programID, -points, source, description, referenceID)
		entry.BalanceAfter = enr.Balance - points

		if err := entry.Validate(); err != nil {
			return err
		}
		if err := s.LedgerRepo.CreateEntry(txCtx, entry); err != nil {
			return err
		}
		return s.EnrollmentRepo.UpdateBalance(txCtx, enr.ID, entry.BalanceAfter)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("points debited",
		"customer_id", customerID,
		"program_id", programID,
		"points", points,
		"source", source,
		"balance", entry.BalanceAfter,
	)

	return entry, nil
}

// Adjust applies a signed staff correction: positive credits, negative
// debits. Callers must hold the award-points permission on the program's
// business.
func (s *ledgerService) Adjust(ctx context.Context, req *dto.AdjustPointsRequest) (*dto.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prog, err := s.ProgramRepo.Get(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}

	if err := s.checkPermission(ctx, types.ActionAwardPoints, prog.BusinessID); err != nil {
		return nil, err
	}

	if req.Points > 0 {
		return s.Credit(ctx, req.CustomerID, req.ProgramID, req.Points, types.LedgerSourceAdjustment, req.Description, req.ReferenceID)
	}

	entry, err := s.Debit(ctx, req.CustomerID, req.ProgramID, -req.Points, types.LedgerSourceAdjustment, req.Description, req.ReferenceID)
	if err != nil {
		return nil, err
	}

	return &dto.BalanceResponse{
		CustomerID: req.CustomerID,
		ProgramID:  req.ProgramID,
		Balance:    entry.BalanceAfter,
	}, nil
}

// CurrentBalance reads the cached counter on the enrollment row.
func (s *ledgerService) CurrentBalance(ctx context.Context, customerID, programID string) (*dto.BalanceResponse, error) {
	enr, err := s.EnrollmentRepo.Get(ctx, customerID, programID)
	if err != nil {
		return nil, err
	}

	return &dto.BalanceResponse{
		CustomerID: customerID,
		ProgramID:  programID,
		Balance:    enr.Balance,
	}, nil
}

// RecomputedBalance sums the ledger history. It exists so operators can
// verify the cached counter; the two must always agree.
func (s *ledgerService) RecomputedBalance(ctx context.Context, customerID, programID string) (int64, error) {
	return s.LedgerRepo.SumEntries(ctx, customerID, programID)
}

func (s *ledgerService) ListEntries(ctx context.Context, f *types.LedgerEntryFilter) (*dto.ListLedgerEntriesResponse, error) {
	if f == nil {
		return nil, ierr.NewError("filter is required").
			WithHint("A ledger entry filter must be provided").
			Mark(ierr.ErrValidation)
	}

	entries, err := s.LedgerRepo.ListEntries(ctx, f)
	if err != nil {
		return nil, err
	}

	return &dto.ListLedgerEntriesResponse{
		Entries: entries,
		Total:   len(entries),
	}, nil
}

// ExpireDuePoints sweeps a program for awards past their expiry that
// still carry unconsumed points, writing a negative expiration entry for
// each remainder. Returns the total points expired.
func (s *ledgerService) ExpireDuePoints(ctx context.Context, programID string) (int64, error) {
	now := time.Now().UTC()

	var expiredTotal int64
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		expired, err := s.LedgerRepo.FindExpiredPoints(txCtx, programID, now)
		if err != nil {
			return err
		}

		for _, e := range expired {
			enr, err := s.EnrollmentRepo.GetForUpdate(txCtx, e.CustomerID, e.ProgramID)
			if err != nil {
				return err
			}

			remainder := e.PointsAvailable
			if remainder <= 0 {
				continue
			}

			if err := s.LedgerRepo.ConsumePoints(txCtx, []*ledger.Entry{e}, remainder); err != nil {
				return err
			}

			expEntry := s.newEntry(txCtx, e.CustomerID, e.ProgramID, -remainder, types.LedgerSourceExpiration, "points expired", e.ID)
			expEntry.BalanceAfter = enr.Balance - remainder

			if err := s.LedgerRepo.CreateEntry(txCtx, expEntry); err != nil {
				return err
			}
			if err := s.EnrollmentRepo.UpdateBalance(txCtx, enr.ID, expEntry.BalanceAfter); err != nil {
				return err
			}

			expiredTotal += remainder
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expiredTotal > 0 {
		s.Logger.Infow("expired points swept",
			"program_id", programID,
			"points", expiredTotal,
		)
	}

	return expiredTotal, nil
}

// lockActiveEnrollment locks the enrollment row and enforces the active
// membership precondition shared by all balance changes.
func (s *ledgerService) lockActiveEnrollment(ctx context.Context, customerID, programID string) (*enrollment.Enrollment, error) {
	enr, err := s.EnrollmentRepo.GetForUpdate(ctx, customerID, programID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("Customer is not enrolled in this program").
				WithReportableDetails(map[string]interface{}{
					"customer_id": customerID,
					"program_id":  programID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		return nil, err
	}

	if !enr.IsActive() {
		return nil, ierr.NewError("enrollment is not active").
			WithHint("The customer's membership in this program has been cancelled").
			Mark(ierr.ErrInvalidOperation)
	}

	return enr, nil
}

func (s *ledgerService) newEntry(ctx context.Context, customerID, programID string, points int64, source types.LedgerSource, description, referenceID string) *ledger.Entry {
	return &ledger.Entry{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		CustomerID:  customerID,
		ProgramID:   programID,
		Points:      points,
		Source:      source,
		Description: description,
		ReferenceID: referenceID,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}
