package analytics

import "github.com/gin-gonic/gin"

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/events/:id", controller.GetEventSales)
		analytics.GET("/bookings/daily", controller.GetBookingDailyStats) // ?days=30
	}
}
