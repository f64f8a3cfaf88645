package main

import (
	"fmt"
	"net/http"
	"os"

	"crowdbond/internal/config"
	"crowdbond/internal/database"
	"crowdbond/internal/handlers"
	"crowdbond/internal/logger"
	"crowdbond/internal/middleware"
	"crowdbond/internal/services"
	"crowdbond/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "crowdbond/internal/docs" // Import swagger docs
)

// @title           Crowdbond API
// @version         1.0
// @description     Crowdbond is a fundraising round ledger: investors buy units of capped rounds, receive certificates, and claim time-phased reward and redemption payouts.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services. All round-scoped mutations share one lock
	// registry so investments, claims, and treasury moves serialize.
	db := dbManager.DB()
	locks := services.NewRoundLocks()
	userService := services.NewUserService(db, appConfig.AdminEmail)
	walletService := services.NewWalletService(db)
	treasuryService := services.NewTreasuryService(db, walletService, locks)
	certificateService := services.NewCertificateService(db)
	roundService := services.NewRoundService(db, treasuryService, certificateService, walletService, locks)
	claimService := services.NewClaimService(db, treasuryService, certificateService, walletService, locks)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	walletHandler := handlers.NewWalletHandler(walletService, auditService)
	roundHandler := handlers.NewRoundHandler(roundService, treasuryService, auditService)
	claimHandler := handlers.NewClaimHandler(claimService, auditService)
	certificateHandler := handlers.NewCertificateHandler(certificateService, auditService)

	router := buildRouter(authHandler, walletHandler, roundHandler, claimHandler, certificateHandler)

	log.Infof("Starting Crowdbond backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// buildRouter assembles the HTTP surface. Custom binding validators are
// registered before any route is mounted so that request binding never
// hits an unregistered tag at runtime.
func buildRouter(
	authHandler *handlers.AuthHandler,
	walletHandler *handlers.WalletHandler,
	roundHandler *handlers.RoundHandler,
	claimHandler *handlers.ClaimHandler,
	certificateHandler *handlers.CertificateHandler,
) *gin.Engine {
	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Wallet routes
	wallet := protected.Group("/wallet")
	wallet.GET("", walletHandler.GetWallet)
	wallet.POST("/deposits", walletHandler.Deposit)

	// Round routes
	rounds := protected.Group("/rounds")
	rounds.GET("", roundHandler.ListRounds)
	rounds.GET("/:id", roundHandler.GetRound)
	rounds.POST("/:id/investments", roundHandler.Invest)
	rounds.POST("/:id/claims", claimHandler.ClaimRound)
	rounds.GET("/:id/claims", claimHandler.Claimable)

	// Certificate routes
	certificates := protected.Group("/certificates")
	certificates.GET("", certificateHandler.ListCertificates)
	certificates.GET("/:id", certificateHandler.GetCertificate)
	certificates.POST("/:id/transfer", certificateHandler.Transfer)

	// Administrator routes
	admin := protected.Group("/rounds")
	admin.Use(middleware.RequireAdmin())
	admin.POST("", roundHandler.CreateRound)
	admin.PATCH("/:id/active", roundHandler.SetActive)
	admin.PATCH("/:id/status", roundHandler.UpdateStatus)
	admin.POST("/:id/rewards", roundHandler.AddReward)
	admin.POST("/:id/withdrawal", roundHandler.Withdraw)
	admin.POST("/:id/emergency-withdrawal", roundHandler.EmergencyWithdraw)
	admin.GET("/:id/treasury/entries", roundHandler.ListTreasuryEntries)

	return router
}
