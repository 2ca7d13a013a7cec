package events

import (
	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	events := router.Group("/events")
	{
		events.POST("", controller.CreateEvent) // POST /api/v1/events
		events.GET("", controller.GetAllEvents) // GET /api/v1/events
		events.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id
	}
}
