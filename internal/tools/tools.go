// Package tools is the boundary between the agent and everything
// local. The agent only consumes text, so every function here returns
// a formatted string and never an error.
package tools

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/errs"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/ledger"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/whatsapp"
)

const maxListedTransactions = 10

// Toolbox bundles the local tools exposed to the agent.
type Toolbox struct {
	store  *ledger.Store
	sender *whatsapp.Client
}

func New(store *ledger.Store, sender *whatsapp.Client) *Toolbox {
	return &Toolbox{store: store, sender: sender}
}

// RegisterTransaction validates and records one buy/sell transaction.
// Invalid input is reported as text and never reaches the store.
func (t *Toolbox) RegisterTransaction(assetID string, quantity, unitPrice float64, venue, side string) string {
	side = strings.ToLower(strings.TrimSpace(side))
	if side != "buy" && side != "sell" {
		return "❌ Error: Transaction type must be either 'buy' or 'sell'"
	}
	if quantity <= 0 {
		return "❌ Error: Quantity must be greater than 0"
	}
	if unitPrice <= 0 {
		return "❌ Error: Price must be greater than 0"
	}
	if strings.TrimSpace(assetID) == "" {
		return "❌ Error: Asset ID is required"
	}

	id, err := t.store.RecordTransaction(assetID, quantity, unitPrice, venue, side)
	if err != nil {
		log.Printf("Error registering transaction: %v", err)
		return fmt.Sprintf("❌ Error registering transaction: %v", err)
	}

	log.Printf("Transaction registered: %s %s %s at %s",
		side, formatQuantity(quantity), assetID, usd(unitPrice))

	return fmt.Sprintf(
		"✅ Transaction registered successfully!\n"+
			"📝 ID: %d\n"+
			"🪙 %s: %s %s\n"+
			"💰 Price: %s\n"+
			"🏪 Exchange: %s",
		id,
		capitalize(side),
		formatQuantity(quantity),
		strings.ToUpper(strings.TrimSpace(assetID)),
		usd(unitPrice),
		venue,
	)
}

// QueryPortfolio renders the transaction history (optionally filtered
// by asset) followed by the current holdings.
func (t *Toolbox) QueryPortfolio(assetID string) string {
	assetID = strings.TrimSpace(assetID)

	txs, err := t.store.ListTransactions(assetID)
	if err != nil {
		log.Printf("Error querying portfolio: %v", err)
		return fmt.Sprintf("❌ Error querying portfolio: %v", err)
	}

	var b strings.Builder
	if assetID != "" {
		if len(txs) == 0 {
			return fmt.Sprintf("📊 No transactions found for %s", strings.ToUpper(assetID))
		}
		fmt.Fprintf(&b, "📊 Transaction history for %s:\n\n", strings.ToUpper(assetID))
	} else {
		if len(txs) == 0 {
			return "📊 No transactions found in portfolio"
		}
		b.WriteString("📊 Complete transaction history:\n\n")
	}

	listed := txs
	if len(listed) > maxListedTransactions {
		listed = listed[:maxListedTransactions]
	}
	for i, tx := range listed {
		fmt.Fprintf(&b,
			"%d. %s: %s %s\n"+
				"   💰 Price: %s\n"+
				"   🏪 Exchange: %s\n"+
				"   📅 Date: %s\n\n",
			i+1,
			strings.ToUpper(tx.Side),
			formatQuantity(tx.Quantity),
			strings.ToUpper(tx.AssetID),
			usd(tx.UnitPrice),
			tx.Venue,
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	if len(txs) > maxListedTransactions {
		fmt.Fprintf(&b, "... and %d more transactions\n\n", len(txs)-maxListedTransactions)
	}

	summary, err := t.store.SummarizeHoldings()
	if err != nil {
		log.Printf("Error querying portfolio: %v", err)
		return fmt.Sprintf("❌ Error querying portfolio: %v", err)
	}
	if len(summary.Holdings) > 0 {
		b.WriteString("💼 Current Holdings:\n")
		for _, h := range summary.Holdings {
			fmt.Fprintf(&b, "• %s: %.6f (avg: %s)\n",
				strings.ToUpper(h.AssetID), h.NetQuantity, usd(h.AvgPrice))
		}
	}

	return b.String()
}

// SendWhatsAppMessage relays text to a phone number through the
// Evolution API. Only the allow-listed number is ever accepted.
func (t *Toolbox) SendWhatsAppMessage(ctx context.Context, phoneNumber, message string) string {
	err := t.sender.SendText(ctx, phoneNumber, message)
	switch {
	case err == nil:
		return "✅ Message sent successfully"
	case errs.IsUnauthorized(err):
		log.Printf("BLOCKED sending message to unauthorized number: %s", phoneNumber)
		return "❌ Error: This bot can only send messages to the authorized number."
	default:
		log.Printf("Error sending WhatsApp message: %v", err)
		return fmt.Sprintf("❌ Failed to send message: %v", err)
	}
}

// usd renders a dollar amount like "$55,000.00".
func usd(amount float64) string {
	return money.NewFromFloat(amount, money.USD).Display()
}

// formatQuantity drops trailing zeros, so 1.0 prints as "1" and 0.4
// as "0.4".
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
