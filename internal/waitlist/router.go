package waitlist

import (
	"stagepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupWaitlistRoutes(router *gin.RouterGroup, controller Controller) {
	userWaitlist := router.Group("/waitlist")
	userWaitlist.Use(middleware.JWTAuth())
	{
		userWaitlist.POST("/join", controller.Join)
		userWaitlist.GET("/status", controller.Status)
	}

	// Manual backfill trigger; cancellations and the sweeper also invoke
	// the same path internally
	adminWaitlist := router.Group("/admin/waitlist")
	adminWaitlist.Use(middleware.JWTAuth(), middleware.RequireRoles("organizer", "admin"))
	{
		adminWaitlist.POST("/notify", controller.Notify)
	}
}
