package availability

import "github.com/gin-gonic/gin"

func SetupAvailabilityRoutes(router *gin.RouterGroup, controller Controller) {
	router.GET("/tiers/:id/availability", controller.GetTierAvailability)

	admin := router.Group("/admin")
	{
		admin.POST("/reconcile", controller.Reconcile)
	}
}
