package duels

import (
	"api/middleware"
	"api/services"

	"github.com/gin-gonic/gin"
)

var duelService *services.DuelService
var duelStore services.DuelStore

// RegisterRoutes registers all routes related to duel challenges
// r: the RouterGroup to which routes are added
func RegisterRoutes(r *gin.RouterGroup, service *services.DuelService, store services.DuelStore) {
	duelService = service
	duelStore = store

	duels := r.Group("/duels")
	duels.Use(middleware.AuthMiddleware())
	{
		duels.GET("/", ListChallenges)
		duels.POST("/", CreateChallenge)
		duels.GET("/export", ExportDuelHistory)
		duels.GET("/:id", GetChallenge)
		duels.POST("/:id/accept", AcceptChallenge)
		duels.POST("/:id/cancel", CancelChallenge)
		duels.POST("/:id/submit", SubmitFlag)
		duels.GET("/:id/ws", DuelWebSocket)
	}
}
