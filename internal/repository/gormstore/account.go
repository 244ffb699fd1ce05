package gormstore

import (
	"context"
	"errors"

	domainAccount "github.com/gudcity/loyalty/internal/domain/account"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/types"
	"gorm.io/gorm"
)

type accountRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewAccountRepository(client postgres.IClient, log *logger.Logger) domainAccount.Repository {
	return &accountRepository{
		client: client,
		log:    log,
	}
}

func (r *accountRepository) Create(ctx context.Context, a *domainAccount.Account) error {
	r.log.Debugw("creating account",
		"account_id", a.ID,
		"tenant_id", a.TenantID,
		"role", a.Role,
	)

	if err := r.client.Querier(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("An account with this identifier already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create account").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*domainAccount.Account, error) {
	var a domainAccount.Account
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Account with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get account").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *accountRepository) ListByBusiness(ctx context.Context, businessID string, role types.AccountRole) ([]*domainAccount.Account, error) {
	var accounts []*domainAccount.Account
	q := r.client.Querier(ctx).
		Where("business_id = ? AND tenant_id = ?", businessID, types.GetTenantID(ctx))
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list accounts").
			Mark(ierr.ErrDatabase)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, a *domainAccount.Account) error {
	result := r.client.Querier(ctx).
		Model(&domainAccount.Account{}).
		Where("id = ? AND tenant_id = ?", a.ID, a.TenantID).
		Updates(map[string]interface{}{
			"name":        a.Name,
			"email":       a.Email,
			"permissions": a.Permissions,
			"status":      a.Status,
			"updated_at":  a.UpdatedAt,
			"updated_by":  a.UpdatedBy,
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update account").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("account not found").
			WithHintf("Account with ID %s was not found", a.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	result := r.client.Querier(ctx).
		Model(&domainAccount.Account{}).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Update("status", status)
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update account status").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("account not found").
			WithHintf("Account with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
