package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/HorizonteApps/clinic-scheduler/internal/config"
	dbpkg "github.com/HorizonteApps/clinic-scheduler/internal/db"
	"github.com/HorizonteApps/clinic-scheduler/internal/payment"
	"github.com/HorizonteApps/clinic-scheduler/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	provider, err := payment.NewMercadoPagoProvider(cfg.MPAccessToken)
	if err != nil {
		log.Fatalf("failed to init payment provider: %v", err)
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, provider, cfg)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
