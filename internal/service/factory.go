package service

import (
	"context"

	"github.com/gudcity/loyalty/internal/cache"
	"github.com/gudcity/loyalty/internal/config"
	"github.com/gudcity/loyalty/internal/domain/account"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/ledger"
	"github.com/gudcity/loyalty/internal/domain/program"
	"github.com/gudcity/loyalty/internal/domain/promocode"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/permission"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/types"
	webhookPublisher "github.com/gudcity/loyalty/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	Evaluator *permission.Evaluator
	Cache     cache.Cache

	// Repositories
	AccountRepo    account.Repository
	ProgramRepo    program.Repository
	EnrollmentRepo enrollment.Repository
	LedgerRepo     ledger.Repository
	PromoCodeRepo  promocode.Repository

	// Publishers
	WebhookPublisher webhookPublisher.WebhookPublisher
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	evaluator *permission.Evaluator,
	cacheStore cache.Cache,
	accountRepo account.Repository,
	programRepo program.Repository,
	enrollmentRepo enrollment.Repository,
	ledgerRepo ledger.Repository,
	promoCodeRepo promocode.Repository,
	webhookPublisher webhookPublisher.WebhookPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Evaluator:        evaluator,
		Cache:            cacheStore,
		AccountRepo:      accountRepo,
		ProgramRepo:      programRepo,
		EnrollmentRepo:   enrollmentRepo,
		LedgerRepo:       ledgerRepo,
		PromoCodeRepo:    promoCodeRepo,
		WebhookPublisher: webhookPublisher,
	}
}

// checkPermission evaluates the context actor against the action and
// target business, logging and translating a denial into a
// permission-denied error.
func (p ServiceParams) checkPermission(ctx context.Context, action types.Action, targetBusinessID string) error {
	actor := types.GetActor(ctx)
	if p.Evaluator.CanPerform(actor, action, targetBusinessID) {
		return nil
	}

	actorID := ""
	actorRole := types.AccountRole("")
	if actor != nil {
		actorID = actor.ID
		actorRole = actor.Role
	}

	p.Logger.Warnw("permission denied",
		"actor_id", actorID,
		"actor_role", actorRole,
		"action", action,
		"target_business_id", targetBusinessID,
	)

	return ierr.NewError("permission denied").
		WithHintf("You are not allowed to perform '%s' on this business", action).
		WithReportableDetails(map[string]interface{}{
			"action": action,
		}).
		Mark(ierr.ErrPermissionDenied)
}

// publishWebhookEvent marshals the payload and hands the event to the
// notification publisher. Delivery is best effort: failures are logged,
// never returned, so they cannot roll back committed state.
func (p ServiceParams) publishWebhookEvent(ctx context.Context, eventName string, payload interface{}) {
	event, err := types.NewWebhookEvent(ctx, eventName, payload)
	if err != nil {
		p.Logger.Errorw("failed to build notification event",
			"event_name", eventName, "error", err)
		return
	}

	if err := p.WebhookPublisher.PublishWebhook(ctx, event); err != nil {
		p.Logger.Errorw("failed to publish notification event",
			"event_name", eventName, "event_id", event.ID, "error", err)
	}
}
