package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/controllers"
	"github.com/summitworks/training-api/logger"
	"github.com/summitworks/training-api/middleware"
	"github.com/summitworks/training-api/models"
	"github.com/summitworks/training-api/services"
	"github.com/summitworks/training-api/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.IsProduction())
	defer logger.Sync()
	logger.Info("Starting Summitworks Training API server...")

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Program{},
		&models.Schedule{},
		&models.CourseRegistration{},
		&models.Invoice{},
		&models.InvoiceRequest{},
		&models.Enquiry{},
		&models.OutboxTask{},
	); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	logger.Info("Database migration completed successfully")

	// Initialize services; the email provider was resolved once at
	// config load time
	services.InitEmailSender(cfg)
	services.InitInvoiceService()
	if _, err := services.InitStorageService(); err != nil {
		logger.Fatal("Failed to initialize artifact storage", "error", err)
	}
	logger.Info("Email provider configured", "provider", string(cfg.EmailProvider))

	// Start the outbox worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.NewOutboxWorker().Start(ctx)

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/metrics", middleware.PrometheusHandler())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Public catalog
		v1.GET("/programs", controllers.ListPrograms)
		v1.GET("/programs/:slug", controllers.GetProgram)
		v1.GET("/schedules", controllers.ListSchedules)

		// Public checkout and contact
		v1.POST("/registrations", controllers.CreateRegistration)
		v1.POST("/enquiries", controllers.CreateEnquiry)
		v1.POST("/invoice-requests", controllers.CreateInvoiceRequest)

		// Back-office login
		v1.POST("/auth/login", controllers.Login)

		// Back-office routes
		admin := v1.Group("")
		admin.Use(middleware.EnsureValidToken(cfg))
		{
			admin.GET("/registrations", controllers.ListRegistrations)
			admin.GET("/registrations/:id", controllers.GetRegistration)
			admin.PATCH("/registrations/:id", controllers.UpdateRegistration)
			admin.DELETE("/registrations/:id", controllers.DeleteRegistration)

			admin.GET("/enquiries", controllers.ListEnquiries)
			admin.PATCH("/enquiries/:id", controllers.UpdateEnquiry)

			admin.GET("/invoices", controllers.ListInvoices)
			admin.GET("/invoice-requests", controllers.ListInvoiceRequests)
			admin.PATCH("/invoice-requests/:id", controllers.ReviewInvoiceRequest)

			admin.GET("/outbox", controllers.ListOutboxTasks)
			admin.POST("/outbox/:id/retry", controllers.RetryOutboxTask)

			// Team management requires the admin role
			team := admin.Group("/users")
			team.Use(middleware.RequireRole(models.RoleAdmin))
			{
				team.GET("", controllers.ListUsers)
				team.POST("", controllers.CreateUser)
				team.PATCH("/:id", controllers.UpdateUser)
			}
		}
	}

	// Start server
	addr := ":" + cfg.Port
	logger.Info("Server is running", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", "error", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Summitworks Training API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
