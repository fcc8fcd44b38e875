package bookings

import (
	"stagepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller Controller) {
	userBookings := router.Group("/bookings")
	userBookings.Use(middleware.JWTAuth())
	{
		userBookings.POST("", controller.CreateBooking)
		userBookings.GET("", controller.ListMyBookings)
		userBookings.GET("/:id", controller.GetBooking)
		userBookings.POST("/:id/cancel", controller.CancelBooking)
	}

	// Payment confirmation callback. The gateway is re-queried for the
	// session, so the endpoint itself needs no user token.
	router.POST("/bookings/complete", controller.CompleteBooking)
}
