package shows

import (
	"stagepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupShowRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse the catalog
	publicShows := router.Group("/shows")
	{
		publicShows.GET("", controller.ListShows)
		publicShows.GET("/:id", controller.GetShow)
		publicShows.GET("/:id/phases", controller.GetPhases)
	}

	// Organizer routes - catalog management requires an organizer or admin role
	adminShows := router.Group("/admin/shows")
	adminShows.Use(middleware.JWTAuth(), middleware.RequireRoles("organizer", "admin"))
	{
		adminShows.POST("", controller.CreateShow)
		adminShows.POST("/:id/publish", controller.PublishShow)
		adminShows.POST("/:id/cancel", controller.CancelShow)
		adminShows.POST("/:id/complete", controller.CompleteShow)
		adminShows.POST("/:id/tiers", controller.AddTier)
		adminShows.POST("/:id/phases", controller.AddPhase)
	}
}
