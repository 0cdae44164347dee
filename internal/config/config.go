package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is built once in main and handed to every component that
// needs it. Nothing reads the environment after Load returns.
type Config struct {
	Host  string
	Port  string
	Debug bool

	// Gemini API key. Optional here because the genai client also
	// picks it up from its own environment variables.
	GeminiAPIKey string

	EvolutionAPIURL      string
	EvolutionInstance    string
	EvolutionAPIKey      string
	AllowedWhatsAppJID   string
	MarketServiceURL     string
	MarketServicePort    string
	MarketStreamAssetIDs []string

	DBDriver string // "sqlite3" or "postgres"
	DBDSN    string

	Workers int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnv("PORT", "8000"),
		Debug:              os.Getenv("DEBUG") == "true",
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		EvolutionAPIURL:    strings.TrimRight(os.Getenv("EVOLUTION_API_URL"), "/"),
		EvolutionInstance:  os.Getenv("EVOLUTION_INSTANCE_NAME"),
		EvolutionAPIKey:    os.Getenv("EVOLUTION_API_KEY"),
		AllowedWhatsAppJID: os.Getenv("ALLOWED_WHATSAPP_NUMBER"),
		MarketServiceURL:   strings.TrimRight(getEnv("MARKET_SERVICE_URL", "http://127.0.0.1:7860"), "/"),
		MarketServicePort:  getEnv("MARKET_SERVER_PORT", "7860"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:              getEnv("DB_DSN", "portfolio.db"),
		Workers:            envToInt(os.Getenv("NUM_WORKERS"), 5),
	}

	ids := getEnv("MARKET_STREAM_ASSETS", "bitcoin,ethereum,solana")
	for _, id := range strings.Split(ids, ",") {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			cfg.MarketStreamAssetIDs = append(cfg.MarketStreamAssetIDs, id)
		}
	}

	return cfg, nil
}

// ValidateBot checks the variables the gateway cannot run without.
// marketd needs none of them, so it skips this.
func (c *Config) ValidateBot() error {
	required := []struct {
		name  string
		value string
	}{
		{"EVOLUTION_API_URL", c.EvolutionAPIURL},
		{"EVOLUTION_INSTANCE_NAME", c.EvolutionInstance},
		{"EVOLUTION_API_KEY", c.EvolutionAPIKey},
		{"ALLOWED_WHATSAPP_NUMBER", c.AllowedWhatsAppJID},
	}
	for _, v := range required {
		if v.value == "" {
			return fmt.Errorf("%s is required", v.name)
		}
	}
	return nil
}

// Helper to get environment variable with default
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func envToInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}
