package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/market"
)

// PriceUpdate is one websocket frame of the market ticker stream.
type PriceUpdate struct {
	Prices    map[string]any `json:"prices"` // coin id -> {"usd": price}
	Timestamp time.Time      `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (tool consumers are trusted)
	},
}

// MarketStream streams periodic price snapshots for a fixed set of
// coin ids over a websocket. One failed upstream poll skips a frame
// instead of closing the connection.
type MarketStream struct {
	client   *market.Client
	coinIDs  string
	interval time.Duration
}

func NewMarketStream(client *market.Client, coinIDs []string) *MarketStream {
	return &MarketStream{
		client:   client,
		coinIDs:  strings.Join(coinIDs, ","),
		interval: 30 * time.Second,
	}
}

// Handle handles GET /ws/market
func (s *MarketStream) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	log.Println("Client connected to market stream")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First snapshot right away, then on every tick.
	for {
		prices, err := s.client.CryptoPrices(c.Request.Context(), s.coinIDs)
		if err != nil {
			log.Println("Market stream poll error:", err)
		} else {
			update := PriceUpdate{Prices: prices, Timestamp: time.Now()}
			if err := conn.WriteJSON(update); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}

		select {
		case <-ticker.C:
		case <-c.Request.Context().Done():
			return
		}
	}
}
