package handlers

import (
	"net/http"
	"strings"
	"time"

	"pest_crm/internal/middleware"
	"pest_crm/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const apiVersion = "1.0.0"

type RouterDeps struct {
	AuthService       services.AuthService
	OrderService      services.OrderService
	StatisticsService services.StatisticsService
	UploadService     services.UploadService
	AllowedOrigins    string
	Logger            *logrus.Logger
}

// SetupRouter wires the full HTTP surface. Everything under /api except
// /api/auth/* requires a bearer token; /health, /api and /uploads are
// public.
func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(corsMiddleware(deps.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/api", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "CRM Pest Control API",
			"version": apiVersion,
		})
	})

	router.Static("/uploads", deps.UploadService.Dir())

	authHandler := NewAuthHandler(deps.AuthService)
	orderHandler := NewOrderHandler(deps.OrderService)
	statsHandler := NewStatisticsHandler(deps.StatisticsService)
	uploadHandler := NewUploadHandler(deps.UploadService)

	requireAuth := middleware.Auth(deps.AuthService)

	auth := router.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.GET("/verify", requireAuth, authHandler.Verify)
		auth.POST("/logout", authHandler.Logout)
	}

	api := router.Group("/api", requireAuth)
	{
		orders := api.Group("/orders")
		{
			orders.GET("", orderHandler.List)
			orders.GET("/search/query", orderHandler.Search)
			orders.GET("/:id", orderHandler.Get)
			orders.POST("", orderHandler.Create)
			orders.PUT("/:id", orderHandler.Update)
			orders.DELETE("/:id", orderHandler.Delete)
		}

		statistics := api.Group("/statistics")
		{
			statistics.GET("/period", statsHandler.Period)
			statistics.GET("/:year/:month", statsHandler.Monthly)
			statistics.PUT("/ad-spend", statsHandler.UpsertAdSpend)
			statistics.PUT("/plan/:year/:month", statsHandler.UpsertPlan)
		}

		upload := api.Group("/upload")
		{
			upload.POST("", uploadHandler.Upload)
			upload.GET("/list", uploadHandler.List)
			upload.DELETE("/:filename", uploadHandler.Delete)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true

	if allowedOrigins == "" {
		// Reflect any origin, as the original deployment did.
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
	}

	return cors.New(corsConfig)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
