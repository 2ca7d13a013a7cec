package bookings

import "github.com/gin-gonic/gin"

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(router *gin.RouterGroup, controller Controller) {
	bookings := router.Group("/bookings")
	{
		bookings.POST("", controller.CreateBooking)             // POST /api/v1/bookings
		bookings.GET("", controller.ListBookings)               // GET /api/v1/bookings?tier_id=&status=
		bookings.GET("/:id", controller.GetBooking)             // GET /api/v1/bookings/:id
		bookings.POST("/:id/confirm", controller.ConfirmBooking) // pending -> confirmed
		bookings.POST("/:id/complete", controller.CompleteBooking)
		bookings.POST("/:id/cancel", controller.CancelBooking)
	}
}
