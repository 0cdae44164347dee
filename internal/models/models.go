package models

import "time"

// Transaction is one immutable row of the trading ledger.
type Transaction struct {
	ID        int64     `json:"id"`
	AssetID   string    `json:"asset_id"` // CoinGecko-style lowercase id, e.g. "bitcoin"
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"` // USD at transaction time
	Venue     string    `json:"venue"`
	Side      string    `json:"side"` // "buy" or "sell"
	CreatedAt time.Time `json:"created_at"`
}

// Holding is the derived net position for one asset. It is computed
// from the ledger on demand and never stored.
type Holding struct {
	AssetID          string  `json:"asset_id"`
	NetQuantity      float64 `json:"net_quantity"`
	AvgPrice         float64 `json:"avg_price"`
	TransactionCount int     `json:"transaction_count"`
}

// PortfolioSummary is the holdings view over the whole ledger. Assets
// that were fully exited (net quantity <= 0) are omitted.
type PortfolioSummary struct {
	Holdings      []Holding `json:"holdings"`
	TotalHoldings int       `json:"total_holdings"`
}

// WebhookPayload mirrors the relevant slice of an Evolution API
// messages-upsert event.
type WebhookPayload struct {
	Data struct {
		Key struct {
			RemoteJID string `json:"remoteJid"`
		} `json:"key"`
		Message struct {
			Conversation string `json:"conversation"`
		} `json:"message"`
	} `json:"data"`
}

// InboundMessage is an authorized webhook message queued for
// background processing.
type InboundMessage struct {
	TaskID string
	Sender string
	Text   string
}
