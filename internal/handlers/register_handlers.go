package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/nimbusbank/corebank/internal/core/ports/services"
	"github.com/nimbusbank/corebank/internal/middleware"
	"github.com/nimbusbank/corebank/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// postingRateLimit is applied only to the posting endpoint; everything else under
// /api/v1 is guarded by auth alone.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	postingRateLimit gin.HandlerFunc,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, postingRateLimit)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	postingRateLimit gin.HandlerFunc,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerAccountRoutes(v1, services.Balance, services.Hold)
	registerHoldRoutes(v1, services.Hold)
	registerTransactionRoutes(v1, services.Posting, postingRateLimit)
	registerLimitRoutes(v1, services.Limit)
	registerMaintenanceRoutes(v1, services.Hold, services.Limit)
}
