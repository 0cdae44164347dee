package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/config"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/handlers"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/market"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	client := market.NewClient()
	marketHandler := handlers.NewMarketHandler(client)
	stream := handlers.NewMarketStream(client, cfg.MarketStreamAssetIDs)

	if os.Getenv("GIN_MODE") == "release" || !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	api := router.Group("/api")
	{
		api.GET("/prices", marketHandler.GetPrices)
		api.GET("/fear-greed", marketHandler.GetFearGreed)
		api.GET("/dominance", marketHandler.GetDominance)
		api.GET("/rates/:base", marketHandler.GetRates)
	}

	router.GET("/ws/market", stream.Handle)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "Market Data Tool Server"})
	})

	addr := cfg.Host + ":" + cfg.MarketServicePort
	log.Println("🚀 Market data server starting on", addr)

	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
