package pricing

import (
	"github.com/gin-gonic/gin"
)

func SetupPricingRoutes(router *gin.RouterGroup, controller Controller) {
	// Public display endpoint, served from a short-TTL cache
	showPricing := router.Group("/shows")
	{
		showPricing.GET("/:id/pricing", controller.GetShowPricing)
	}
}
