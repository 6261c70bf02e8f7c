// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"slotly/internal/gateway"
	"slotly/internal/notifications"
	"slotly/internal/pools"
	"slotly/internal/reservations"
	"slotly/internal/shared/config"
	"slotly/internal/shared/database"
	"slotly/internal/shared/middleware"
	"slotly/internal/waitlist"
	"slotly/pkg/cache"
	"slotly/pkg/logger"

	_ "slotly/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.Producer
	cache    cache.Service
	log      *logger.Logger

	gateway *gateway.Gateway
}

// NewRouter creates a new router instance. The producer may be nil when
// event publishing is disabled.
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.Producer,
	cacheService cache.Service, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
		cache:    cacheService,
		log:      log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.buildGateway()

	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	api.Use(middleware.ServiceAuthWithConfig(r.config))
	{
		pools.SetupPoolRoutes(api, pools.NewController(r.gateway))
		waitlist.SetupWaitlistRoutes(api, waitlist.NewController(r.gateway))
		reservations.SetupReservationRoutes(api, reservations.NewController(r.gateway))
	}
}

// Gateway exposes the allocation gateway so the server can close it on
// shutdown.
func (r *Router) Gateway() *gateway.Gateway {
	return r.gateway
}

// buildGateway wires repositories, services and the per-pool lock store
func (r *Router) buildGateway() {
	pg := r.db.GetPostgreSQL()

	poolRepo := pools.NewRepository(pg)
	poolService := pools.NewService(poolRepo, r.producer, r.log)

	waitlistConfig := &waitlist.ServiceConfig{ViewCacheTTL: r.config.Redis.ViewCacheTTL}
	waitlistRepo := waitlist.NewRepository(pg)
	waitlistService := waitlist.NewService(waitlistRepo, poolRepo, r.cache, r.producer, waitlistConfig, r.log)

	reservationConfig := &reservations.ServiceConfig{ViewCacheTTL: r.config.Redis.ViewCacheTTL}
	reservationRepo := reservations.NewRepository(pg)
	reservationService := reservations.NewService(reservationRepo, poolRepo, r.cache, r.producer, reservationConfig, r.log)

	locks := gateway.NewLockStore(
		gateway.WithIdleTTL(r.config.Allocation.LockIdleTTL),
		gateway.WithCleanupEvery(r.config.Allocation.LockCleanupEvery),
	)
	r.gateway = gateway.New(poolService, waitlistService, reservationService, locks)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "slotly",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "slotly",
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
