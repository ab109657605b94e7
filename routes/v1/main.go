package v1

import (
	"api/handlers/auth"
	"api/handlers/duels"
	"api/handlers/users"
	"api/middleware"
	"api/services"

	"github.com/gin-gonic/gin"
)

// Register the endpoints for the v1 API
func Register(r *gin.Engine, duelService *services.DuelService, duelStore services.DuelStore) {
	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	rateLimiter := middleware.NewRateLimiter(10000, 1500)
	v1.Use(middleware.RateLimiterMiddleware(rateLimiter))

	RegisterPingRoutes(v1)
	auth.RegisterRoutes(v1)
	users.RegisterRoutes(v1)
	duels.RegisterRoutes(v1, duelService, duelStore)

	// Register metrics and swagger endpoints
	RegisterMetricsRoutes(v1)
	RegisterSwaggerRoutes(v1)
}
