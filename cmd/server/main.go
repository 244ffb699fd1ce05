package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gudcity/loyalty/internal/api"
	v1 "github.com/gudcity/loyalty/internal/api/v1"
	"github.com/gudcity/loyalty/internal/cache"
	"github.com/gudcity/loyalty/internal/config"
	"github.com/gudcity/loyalty/internal/domain/account"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/permission"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/pubsub"
	pubsubMemory "github.com/gudcity/loyalty/internal/pubsub/memory"
	"github.com/gudcity/loyalty/internal/repository"
	"github.com/gudcity/loyalty/internal/service"
	"github.com/gudcity/loyalty/internal/validator"
	webhookPublisher "github.com/gudcity/loyalty/internal/webhook/publisher"
	"go.uber.org/fx"
)

// @title Loyalty API
// @version 1.0
// @description Loyalty program API service
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// Permission evaluator
			permission.NewEvaluator,

			// PubSub and notifications
			pubsubMemory.NewPubSub,
			webhookPublisher.NewPublisher,

			// Repositories
			repository.NewAccountRepository,
			repository.NewProgramRepository,
			repository.NewEnrollmentRepository,
			repository.NewLedgerRepository,
			repository.NewPromoCodeRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewAccountService,
			service.NewStaffService,
			service.NewProgramService,
			service.NewEnrollmentService,
			service.NewLedgerService,
			service.NewPromotionService,
			service.NewRedemptionService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	accountService service.AccountService,
	staffService service.StaffService,
	programService service.ProgramService,
	enrollmentService service.EnrollmentService,
	ledgerService service.LedgerService,
	promotionService service.PromotionService,
	redemptionService service.RedemptionService,
) api.Handlers {
	return api.Handlers{
		Health:     v1.NewHealthHandler(),
		Account:    v1.NewAccountHandler(accountService, staffService, logger),
		Program:    v1.NewProgramHandler(programService, logger),
		Enrollment: v1.NewEnrollmentHandler(enrollmentService, logger),
		Ledger:     v1.NewLedgerHandler(ledgerService, logger),
		Promotion:  v1.NewPromotionHandler(promotionService, redemptionService, logger),
	}
}

func provideRouter(handlers api.Handlers, accountRepo account.Repository, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, accountRepo, log)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return ps.Close()
		},
	})
}
