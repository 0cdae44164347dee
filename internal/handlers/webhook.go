package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/models"
)

// WebhookHandler receives Evolution API message events. It filters by
// the single allow-listed sender and hands valid messages to the
// processor; the HTTP response never waits for the agent.
type WebhookHandler struct {
	allowedJID string
	processor  *MessageProcessor
}

func NewWebhookHandler(allowedJID string, processor *MessageProcessor) *WebhookHandler {
	return &WebhookHandler{allowedJID: allowedJID, processor: processor}
}

// Receive handles POST /webhook/messages-upsert
func (h *WebhookHandler) Receive(c *gin.Context) {
	log.Println("Webhook received at /messages-upsert")

	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error in webhook endpoint: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	conversation := payload.Data.Message.Conversation
	senderJID := payload.Data.Key.RemoteJID

	if conversation == "" || senderJID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "webhook acknowledged - no action needed"})
		return
	}

	if !strings.Contains(senderJID, h.allowedJID) {
		log.Printf("IGNORING message from unauthorized sender: %s", senderJID)
		c.JSON(http.StatusOK, gin.H{"status": "message ignored - unauthorized sender"})
		return
	}

	text := strings.TrimSpace(conversation)
	log.Printf("VALID message received from %s: '%s'", senderJID, truncate(text, 50))

	h.processor.Enqueue(senderJID, text)

	c.JSON(http.StatusOK, gin.H{"status": "message queued for processing"})
}
