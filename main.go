package main

import (
	"context"
	"log"

	"api/config"
	"api/database"
	"api/middleware"
	v1 "api/routes/v1"
	"api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title CryptoDuels API
// @version 1.0
// @description Gamified cryptography learning platform with peer-vs-peer duel challenges
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	config.LoadConfig()
	database.InitDB()
	database.InitCache()

	ledger := services.NewCoinLedger(database.DB)
	store := services.NewGormDuelStore(database.DB, ledger)
	pool := services.NewGormTaskPool(database.DB)
	duelService := services.NewDuelService(store, pool, config.DefaultDuelTimingConfig, config.FlagPrefix)

	// The sweeper owns every time-driven transition: expiry of stale pending
	// duels and activation of accepted ones
	sweeper := services.NewSweeper(store, pool, config.DefaultDuelTimingConfig.SweepInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	middleware.UpdateSystemMetrics()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	v1.Register(r, duelService, store)

	log.Println("Starting server on port ", config.ServerPort)
	if err := r.Run(":" + config.ServerPort); err != nil {
		log.Fatal("failed to start server: ", err)
	}
}
