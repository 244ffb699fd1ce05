package gormstore

import (
	"context"
	"errors"
	"time"

	domainEnrollment "github.com/gudcity/loyalty/internal/domain/enrollment"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type enrollmentRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewEnrollmentRepository(client postgres.IClient, log *logger.Logger) domainEnrollment.Repository {
	return &enrollmentRepository{
		client: client,
		log:    log,
	}
}

func (r *enrollmentRepository) Create(ctx context.Context, e *domainEnrollment.Enrollment) error {
	r.log.Debugw("creating enrollment",
		"enrollment_id", e.ID,
		"customer_id", e.CustomerID,
		"program_id", e.ProgramID,
	)

	if err := r.client.Querier(ctx).Create(e).Error; err != nil {
		// The unique (customer_id, program_id) index is the last line of
		// defense against duplicate-enrollment races.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("Customer is already enrolled in this program").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create enrollment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *enrollmentRepository) Get(ctx context.Context, customerID, programID string) (*domainEnrollment.Enrollment, error) {
	var e domainEnrollment.Enrollment
	err := r.client.Querier(ctx).
		Where("customer_id = ? AND program_id = ? AND tenant_id = ?",
			customerID, programID, types.GetTenantID(ctx)).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHint("Customer is not enrolled in this program").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get enrollment").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *enrollmentRepository) GetForUpdate(ctx context.Context, customerID, programID string) (*domainEnrollment.Enrollment, error) {
	q := r.client.Querier(ctx)
	// Row locks are only available on postgres; the sqlite test dialect
	// serializes writes on its own.
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var e domainEnrollment.Enrollment
	err := q.
		Where("customer_id = ? AND program_id = ? AND tenant_id = ?",
			customerID, programID, types.GetTenantID(ctx)).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHint("Customer is not enrolled in this program").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to lock enrollment").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *enrollmentRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domainEnrollment.Enrollment, error) {
	var enrollments []*domainEnrollment.Enrollment
	err := r.client.Querier(ctx).
		Where("customer_id = ? AND tenant_id = ?", customerID, types.GetTenantID(ctx)).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list enrollments").
			Mark(ierr.ErrDatabase)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) ListActiveByProgram(ctx context.Context, programID string) ([]*domainEnrollment.Enrollment, error) {
	var enrollments []*domainEnrollment.Enrollment
	err := r.client.Querier(ctx).
		Where("program_id = ? AND tenant_id = ? AND enrollment_status = ?",
			programID, types.GetTenantID(ctx), types.EnrollmentStatusActive).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list program enrollments").
			Mark(ierr.ErrDatabase)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) HasActiveForBusiness(ctx context.Context, customerID, businessID string) (bool, error) {
	var count int64
	err := r.client.Querier(ctx).
		Model(&domainEnrollment.Enrollment{}).
		Where("customer_id = ? AND business_id = ? AND tenant_id = ? AND enrollment_status = ?",
			customerID, businessID, types.GetTenantID(ctx), types.EnrollmentStatusActive).
		Count(&count).Error
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check business enrollment").
			Mark(ierr.ErrDatabase)
	}
	return count > 0, nil
}

func (r *enrollmentRepository) UpdateStatus(ctx context.Context, id string, status types.EnrollmentStatus) error {
	result := r.client.Querier(ctx).
		Model(&domainEnrollment.Enrollment{}).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Updates(map[string]interface{}{
			"enrollment_status": status,
			"updated_at":        time.Now().UTC(),
			"updated_by":        types.GetActorID(ctx),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update enrollment status").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("enrollment not found").
			WithHintf("Enrollment with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *enrollmentRepository) UpdateBalance(ctx context.Context, id string, balance int64) error {
	result := r.client.Querier(ctx).
		Model(&domainEnrollment.Enrollment{}).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Updates(map[string]interface{}{
			"balance":    balance,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update enrollment balance").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("enrollment not found").
			WithHintf("Enrollment with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *enrollmentRepository) Reactivate(ctx context.Context, id string) error {
	result := r.client.Querier(ctx).
		Model(&domainEnrollment.Enrollment{}).
		Where("id = ? AND tenant_id = ? AND enrollment_status = ?",
			id, types.GetTenantID(ctx), types.EnrollmentStatusCancelled).
		Updates(map[string]interface{}{
			"enrollment_status": types.EnrollmentStatusActive,
			"enrolled_at":       time.Now().UTC(),
			"updated_at":        time.Now().UTC(),
			"updated_by":        types.GetActorID(ctx),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to reactivate enrollment").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("enrollment is not cancelled").
			WithHint("Only cancelled enrollments can be reactivated").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}
