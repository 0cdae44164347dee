package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/agent"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/config"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/db"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/handlers"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/ledger"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/tools"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize the ledger database
	conn, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer conn.Close()

	store := ledger.New(conn, cfg.DBDriver)
	if err := store.Init(); err != nil {
		log.Fatal("Failed to initialize ledger:", err)
	}
	log.Println("✅ Ledger database initialized")

	wa := whatsapp.NewClient(cfg.EvolutionAPIURL, cfg.EvolutionInstance, cfg.EvolutionAPIKey, cfg.AllowedWhatsAppJID)
	toolbox := tools.New(store, wa)

	// Build the agent with local ledger tools plus the market-data
	// tool service.
	functions := append(agent.LocalFunctions(toolbox), agent.MarketFunctions(cfg.MarketServiceURL)...)
	assistant, err := agent.New(context.Background(), cfg.GeminiAPIKey, functions)
	if err != nil {
		log.Fatal("Failed to create agent:", err)
	}
	log.Println("✅ AI agent initialized")

	processor := handlers.NewMessageProcessor(cfg.Workers, assistant, wa)
	processor.Start()
	defer processor.Stop()

	if os.Getenv("GIN_MODE") == "release" || !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	webhook := handlers.NewWebhookHandler(cfg.AllowedWhatsAppJID, processor)
	router.POST("/webhook/messages-upsert", webhook.Receive)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "WhatsApp Portfolio Bot",
			"version": "1.0.0",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"database":       "connected",
			"market_service": cfg.MarketServiceURL,
			"evolution_api":  cfg.EvolutionAPIURL,
		})
	})

	addr := cfg.Host + ":" + cfg.Port
	log.Println("🚀 WhatsApp bot server starting on", addr)

	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
