package promos

import (
	"stagepass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPromoRoutes(router *gin.RouterGroup, controller Controller) {
	// Validation is part of the checkout flow and open to buyers
	publicPromos := router.Group("/promo-codes")
	{
		publicPromos.POST("/validate", controller.Validate)
	}

	// Code management is operator-only
	adminPromos := router.Group("/admin/promo-codes")
	adminPromos.Use(middleware.JWTAuth(), middleware.RequireRoles("organizer", "admin"))
	{
		adminPromos.POST("", controller.Create)
		adminPromos.GET("", controller.List)
		adminPromos.DELETE("/:id", controller.Deactivate)
	}
}
