package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"cuentas/internal/config"
	"cuentas/internal/database"
	"cuentas/internal/handlers"
	"cuentas/internal/logger"
	"cuentas/internal/middleware"
	"cuentas/internal/models"
	"cuentas/internal/services"
	"cuentas/internal/validator"
)

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

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db)
	settingsService := services.NewSettingsService(db)
	transactionService := services.NewTransactionService(db, accountService, settingsService)
	transferService := services.NewTransferService(db, accountService)
	documentService := services.NewDocumentService(db, transactionService, settingsService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	transferHandler := handlers.NewTransferHandler(transferService, auditService)
	documentHandler := handlers.NewDocumentHandler(documentService, auditService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

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
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes: any authenticated user can read
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/accounts", accountHandler.GetAccounts)
	protected.GET("/accounts/:id", accountHandler.GetAccountByID)
	protected.GET("/accounts/:id/recompute", accountHandler.RecomputeBalance)
	protected.GET("/transactions", transactionHandler.GetTransactions)
	protected.GET("/transactions/:id", transactionHandler.GetTransactionByID)
	protected.GET("/documents", documentHandler.GetDocuments)
	protected.GET("/documents/:id", documentHandler.GetDocumentByID)
	protected.GET("/settings", settingsHandler.GetSettings)

	// Ledger mutations require the admin role
	admin := v1.Group("/")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))

	admin.POST("/accounts", accountHandler.CreateAccount)
	admin.PUT("/accounts/:id", accountHandler.UpdateAccount)
	admin.DELETE("/accounts/:id", accountHandler.DeleteAccount)
	admin.POST("/accounts/:id/adjust-balance", accountHandler.AdjustBalance)

	admin.POST("/transactions", transactionHandler.CreateTransaction)
	admin.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	admin.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	admin.POST("/transfers", transferHandler.Transfer)

	admin.POST("/documents", documentHandler.CreateDocument)
	admin.DELETE("/documents/:id", documentHandler.DeleteDocument)
	admin.POST("/documents/:id/convert", documentHandler.ConvertProforma)
	admin.POST("/documents/:id/collect", documentHandler.CollectInvoice)
	admin.POST("/documents/:id/revert", documentHandler.RevertInvoice)

	admin.PUT("/settings", settingsHandler.UpdateSettings)

	log.Infof("Starting Cuentas backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
