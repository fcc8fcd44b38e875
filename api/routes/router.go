// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"stagepass/internal/bookings"
	"stagepass/internal/inventory"
	"stagepass/internal/notifications"
	"stagepass/internal/payments"
	"stagepass/internal/pricing"
	"stagepass/internal/promos"
	"stagepass/internal/shared/config"
	"stagepass/internal/shared/database"
	"stagepass/internal/shows"
	"stagepass/internal/waitlist"
	"stagepass/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher

	// bookingService is kept for the background hold sweeper
	bookingService bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()
	cacheService := cache.NewService(r.db.GetRedisClient())

	// Repositories are shared across domains through narrow read interfaces
	showRepo := shows.NewRepository(pg)
	inventoryRepo := inventory.NewRepository(pg)
	promoRepo := promos.NewRepository(pg)
	bookingRepo := bookings.NewRepository(pg)
	waitlistRepo := waitlist.NewRepository(pg)

	showService := shows.NewService(showRepo, cacheService)
	pricingService := pricing.NewService(showRepo, inventoryRepo, cacheService, r.config.Redis.PricingCacheTTL)
	inventoryService := inventory.NewService(inventoryRepo, showRepo, cacheService, r.config.Redis.SeatMapCacheTTL)
	promoService := promos.NewService(promoRepo)
	waitlistService := waitlist.NewService(waitlistRepo, showRepo, inventoryRepo, r.publisher)

	gateway := payments.NewMockGateway(r.config.Payment.CheckoutBaseURL)
	bookingService := bookings.NewService(
		bookingRepo,
		showRepo,
		inventoryRepo,
		promoService,
		gateway,
		r.publisher,
		waitlistService,
		r.config.Booking.HoldTTL,
	)
	r.bookingService = bookingService

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		shows.SetupShowRoutes(api, shows.NewController(showService))
		pricing.SetupPricingRoutes(api, pricing.NewController(pricingService))
		inventory.SetupInventoryRoutes(api, inventory.NewController(inventoryService))
		promos.SetupPromoRoutes(api, promos.NewController(promoService))
		bookings.SetupBookingRoutes(api, bookings.NewController(bookingService))
		waitlist.SetupWaitlistRoutes(api, waitlist.NewController(waitlistService))
	}
}

// BookingService returns the wired booking service. It is only valid after
// SetupRoutes has run.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "stagepass-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "stagepass-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
