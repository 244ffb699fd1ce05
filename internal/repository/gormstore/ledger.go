package gormstore

import (
	"context"
	"errors"
	"time"

	domainLedger "github.com/gudcity/loyalty/internal/domain/ledger"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/types"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewLedgerRepository(client postgres.IClient, log *logger.Logger) domainLedger.Repository {
	return &ledgerRepository{
		client: client,
		log:    log,
	}
}

func (r *ledgerRepository) CreateEntry(ctx context.Context, e *domainLedger.Entry) error {
	r.log.Debugw("creating ledger entry",
		"entry_id", e.ID,
		"customer_id", e.CustomerID,
		"program_id", e.ProgramID,
		"points", e.Points,
		"source", e.Source,
	)

	if err := r.client.Querier(ctx).Create(e).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create ledger entry").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ledgerRepository) GetEntry(ctx context.Context, id string) (*domainLedger.Entry, error) {
	var e domainLedger.Entry
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Ledger entry with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get ledger entry").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *ledgerRepository) ListEntries(ctx context.Context, f *types.LedgerEntryFilter) ([]*domainLedger.Entry, error) {
	q := r.client.Querier(ctx).
		Where("customer_id = ? AND program_id = ? AND tenant_id = ?",
			f.CustomerID, f.ProgramID, types.GetTenantID(ctx))
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var entries []*domainLedger.Entry
	// Ordering by (created_at, id) keeps the history replayable; ids are
	// k-sortable ULIDs so ties break deterministically.
	if err := q.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list ledger entries").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *ledgerRepository) SumEntries(ctx context.Context, customerID, programID string) (int64, error) {
	var sum *int64
	err := r.client.Querier(ctx).
		Model(&domainLedger.Entry{}).
		Select("SUM(points)").
		Where("customer_id = ? AND program_id = ? AND tenant_id = ?",
			customerID, programID, types.GetTenantID(ctx)).
		Scan(&sum).Error
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to sum ledger entries").
			Mark(ierr.ErrDatabase)
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (r *ledgerRepository) FindEligiblePoints(ctx context.Context, customerID, programID string, now time.Time) ([]*domainLedger.Entry, error) {
	var entries []*domainLedger.Entry
	err := r.client.Querier(ctx).
		Where("customer_id = ? AND program_id = ? AND tenant_id = ?",
			customerID, programID, types.GetTenantID(ctx)).
		Where("points_available > 0").
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to find eligible points").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *ledgerRepository) ConsumePoints(ctx context.Context, entries []*domainLedger.Entry, amount int64) error {
	remaining := amount
	for _, e := range entries {
		if remaining <= 0 {
			break
		}

		consume := e.PointsAvailable
		if consume > remaining {
			consume = remaining
		}

		result := r.client.Querier(ctx).
			Model(&domainLedger.Entry{}).
			Where("id = ? AND points_available >= ?", e.ID, consume).
			Update("points_available", gorm.Expr("points_available - ?", consume))
		if result.Error != nil {
			return ierr.WithError(result.Error).
				WithHint("Failed to consume points").
				Mark(ierr.ErrDatabase)
		}
		if result.RowsAffected == 0 {
			return ierr.NewError("points were consumed concurrently").
				WithHint("Insufficient balance to process debit operation").
				Mark(ierr.ErrInsufficientBalance)
		}

		e.PointsAvailable -= consume
		remaining -= consume
	}

	if remaining > 0 {
		return ierr.NewError("insufficient points to consume").
			WithHint("Insufficient balance to process debit operation").
			WithReportableDetails(map[string]interface{}{
				"requested": amount,
				"shortfall": remaining,
			}).
			Mark(ierr.ErrInsufficientBalance)
	}
	return nil
}

func (r *ledgerRepository) FindExpiredPoints(ctx context.Context, programID string, now time.Time) ([]*domainLedger.Entry, error) {
	var entries []*domainLedger.Entry
	err := r.client.Querier(ctx).
		Where("program_id = ? AND tenant_id = ?", programID, types.GetTenantID(ctx)).
		Where("points_available > 0").
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to find expired points").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}
