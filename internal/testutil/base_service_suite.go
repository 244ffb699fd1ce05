package testutil

import (
	"context"
	"time"

	"github.com/gudcity/loyalty/internal/cache"
	"github.com/gudcity/loyalty/internal/config"
	"github.com/gudcity/loyalty/internal/domain/account"
	"github.com/gudcity/loyalty/internal/domain/enrollment"
	"github.com/gudcity/loyalty/internal/domain/ledger"
	"github.com/gudcity/loyalty/internal/domain/program"
	"github.com/gudcity/loyalty/internal/domain/promocode"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/postgres"
	"github.com/gudcity/loyalty/internal/types"
	"github.com/gudcity/loyalty/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	AccountRepo    account.Repository
	ProgramRepo    program.Repository
	EnrollmentRepo enrollment.Repository
	LedgerRepo     ledger.Repository
	PromoCodeRepo  promocode.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx              context.Context
	stores           Stores
	webhookPublisher *InMemoryWebhookPublisher
	db               postgres.IClient
	logger           *logger.Logger
	config           *config.Configuration
	now              time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	// Initialize logger with test config
	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	// Initialize cache
	cache.Initialize()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
	cache.GetInMemoryCache().Flush(s.ctx)
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = types.SetTenantID(s.ctx, types.DefaultTenantID)
	s.ctx = types.SetActorID(s.ctx, types.DefaultActorID)
	s.ctx = types.SetActor(s.ctx, &types.Actor{
		ID:   types.DefaultActorID,
		Role: types.AccountRoleAdmin,
	})
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		AccountRepo:    NewInMemoryAccountStore(),
		ProgramRepo:    NewInMemoryProgramStore(),
		EnrollmentRepo: NewInMemoryEnrollmentStore(),
		LedgerRepo:     NewInMemoryLedgerStore(),
		PromoCodeRepo:  NewInMemoryPromoCodeStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.webhookPublisher = NewInMemoryWebhookPublisher()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.AccountRepo.(*InMemoryAccountStore).Clear()
	s.stores.ProgramRepo.(*InMemoryProgramStore).Clear()
	s.stores.EnrollmentRepo.(*InMemoryEnrollmentStore).Clear()
	s.stores.LedgerRepo.(*InMemoryLedgerStore).Clear()
	s.stores.PromoCodeRepo.(*InMemoryPromoCodeStore).Clear()
	s.webhookPublisher.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// SetContextActor swaps the actor on the test context
func (s *BaseServiceTestSuite) SetContextActor(actor *types.Actor) {
	s.ctx = types.SetActorID(s.ctx, actor.ID)
	s.ctx = types.SetActor(s.ctx, actor)
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetWebhookPublisher returns the capturing notification publisher
func (s *BaseServiceTestSuite) GetWebhookPublisher() *InMemoryWebhookPublisher {
	return s.webhookPublisher
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
