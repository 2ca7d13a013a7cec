package routes

import (
	"net/http"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/analytics"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/availability"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/bookings"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/events"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/config"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/database"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/tiers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	services *Services
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, services *Services) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		services: services,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		events.SetupEventRoutes(api, events.NewController(r.services.Events))
		tiers.SetupTierRoutes(api, tiers.NewController(r.services.Tiers))
		availability.SetupAvailabilityRoutes(api, availability.NewController(r.services.Availability))
		bookings.SetupBookingRoutes(api, bookings.NewController(r.services.Bookings, bookings.Currency{
			Code:     r.config.Booking.Currency,
			Exponent: r.config.Booking.CurrencyExponent,
		}))
		analytics.SetupAnalyticsRoutes(api, analytics.NewController(r.services.Analytics))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketing-ledger",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketing-ledger",
			"redis":     r.db.Redis != nil,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}
