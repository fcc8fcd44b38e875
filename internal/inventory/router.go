package inventory

import (
	"stagepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupInventoryRoutes(router *gin.RouterGroup, controller Controller) {
	// Public seat-map display
	publicSeats := router.Group("/shows")
	{
		publicSeats.GET("/:id/seatmap", controller.GetSeatMap)
	}

	// Seat materialization is an operator action
	adminSeats := router.Group("/admin/shows")
	adminSeats.Use(middleware.JWTAuth(), middleware.RequireRoles("organizer", "admin"))
	{
		adminSeats.POST("/:id/seatmap/generate", controller.GenerateSeatMap)
	}
}
