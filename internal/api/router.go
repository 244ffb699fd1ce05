package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/gudcity/loyalty/internal/api/v1"
	"github.com/gudcity/loyalty/internal/domain/account"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/rest/middleware"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Account    *v1.AccountHandler
	Program    *v1.ProgramHandler
	Enrollment *v1.EnrollmentHandler
	Ledger     *v1.LedgerHandler
	Promotion  *v1.PromotionHandler
}

func NewRouter(handlers Handlers, accountRepo account.Repository, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.RequestContext(accountRepo, log))
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Account and staff routes
	accounts := router.Group("/accounts")
	{
		accounts.POST("", handlers.Account.CreateAccount)
		accounts.GET("/:id", handlers.Account.GetAccount)
	}

	staff := router.Group("/staff")
	{
		staff.POST("", handlers.Account.CreateStaff)
		staff.GET("", handlers.Account.ListStaff)
		staff.PUT("/:id/permissions", handlers.Account.UpdateStaffPermissions)
		staff.DELETE("/:id", handlers.Account.RevokeStaff)
	}

	// Program routes
	programs := router.Group("/programs")
	{
		programs.POST("", handlers.Program.CreateProgram)
		programs.GET("", handlers.Program.ListPrograms)
		programs.GET("/:id", handlers.Program.GetProgram)
		programs.PUT("/:id", handlers.Program.UpdateProgram)
		programs.DELETE("/:id", handlers.Program.DeleteProgram)
		programs.POST("/:id/tiers", handlers.Program.AddRewardTier)
		programs.POST("/:id/expire-points", handlers.Ledger.ExpireDuePoints)
	}

	tiers := router.Group("/tiers")
	{
		tiers.PUT("/:tier_id", handlers.Program.UpdateRewardTier)
		tiers.DELETE("/:tier_id", handlers.Program.RemoveRewardTier)
	}

	// Enrollment routes
	enrollments := router.Group("/enrollments")
	{
		enrollments.POST("", handlers.Enrollment.Enroll)
		enrollments.POST("/cancel", handlers.Enrollment.Cancel)
	}

	customers := router.Group("/customers")
	{
		customers.GET("/:customer_id/programs", handlers.Enrollment.ListProgramsFor)
		customers.GET("/:customer_id/programs/:program_id/balance", handlers.Ledger.GetBalance)
		customers.GET("/:customer_id/programs/:program_id/ledger", handlers.Ledger.ListEntries)
	}

	// Points routes
	points := router.Group("/points")
	{
		points.POST("/award", handlers.Ledger.Award)
		points.POST("/adjust", handlers.Ledger.Adjust)
	}

	// Promotion and redemption routes
	promotions := router.Group("/promotions")
	{
		promotions.POST("", handlers.Promotion.CreatePromoCode)
		promotions.GET("", handlers.Promotion.ListPromoCodes)
		promotions.GET("/:id", handlers.Promotion.GetPromoCode)
		promotions.DELETE("/:id", handlers.Promotion.DeletePromoCode)
		promotions.POST("/redeem", handlers.Promotion.RedeemCode)
		promotions.POST("/expire", handlers.Promotion.ExpirePromoCodes)
	}

	rewards := router.Group("/rewards")
	{
		rewards.POST("/redeem", handlers.Promotion.RedeemReward)
	}
}
