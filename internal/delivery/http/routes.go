package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pricewatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	match := router.Group("/match")
	{
		match.GET("/view/:competitor", handler.ViewMatches)
		match.POST("/auto/:competitor", handler.AutoMatch)
		match.POST("/manual_by_barcode/:competitor", handler.ManualMatch)
	}

	router.GET("/compare/:competitor", handler.Compare)

	tags := router.Group("/tags")
	{
		tags.GET("/", handler.ListTags)
		tags.POST("/", handler.CreateTag)
	}

	schedules := router.Group("/schedules")
	{
		schedules.GET("/", handler.ListSchedules)
		schedules.POST("/", handler.CreateSchedule)
		schedules.PATCH("/:id/active", handler.SetScheduleActive)
		schedules.DELETE("/:id", handler.DeleteSchedule)
	}

	items := router.Group("/items")
	{
		items.GET("/", handler.ListItems)
		items.POST("/upsert", handler.UpsertItems)
		items.POST("/competitor/:competitor/upsert", handler.UpsertCompetitorItems)
	}

	return router
}
