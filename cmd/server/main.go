package main

import (
	"log"

	"pest_crm/internal/config"
	"pest_crm/internal/database"
	"pest_crm/internal/handlers"
	"pest_crm/internal/migrations"
	"pest_crm/internal/redis"
	"pest_crm/internal/repository"
	"pest_crm/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := config.GetLogger()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis (issued-token store)
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)

	// Initialize services
	uploadService, err := services.NewUploadService(cfg.UploadsDir, cfg.MaxUploadMB, logger)
	if err != nil {
		log.Fatal("Failed to prepare uploads directory:", err)
	}
	authService := services.NewAuthService(cfg.JWTSecret, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.TokenTTLDays, redisClient)
	orderService := services.NewOrderService(orderRepo, uploadService)
	statsService := services.NewStatisticsService(orderRepo, statsRepo)

	// Setup routes
	router := handlers.SetupRouter(handlers.RouterDeps{
		AuthService:       authService,
		OrderService:      orderService,
		StatisticsService: statsService,
		UploadService:     uploadService,
		AllowedOrigins:    cfg.AllowedOrigins,
		Logger:            logger,
	})

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
