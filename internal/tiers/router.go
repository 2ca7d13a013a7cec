package tiers

import "github.com/gin-gonic/gin"

func SetupTierRoutes(router *gin.RouterGroup, controller Controller) {
	eventTiers := router.Group("/events/:id/tiers")
	{
		eventTiers.POST("", controller.CreateTier) // POST /api/v1/events/:id/tiers
		eventTiers.GET("", controller.ListTiers)   // GET /api/v1/events/:id/tiers
	}

	tiers := router.Group("/tiers")
	{
		tiers.GET("/:id", controller.GetTier)
		tiers.PATCH("/:id", controller.UpdateTier)
		tiers.DELETE("/:id", controller.CancelTier) // soft delete
	}
}
