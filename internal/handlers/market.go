package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/errs"
)

// MarketAPI is the slice of the market client the handlers need.
type MarketAPI interface {
	CryptoPrices(ctx context.Context, coinIDs string) (map[string]any, error)
	FearGreedIndex(ctx context.Context) (map[string]any, error)
	BitcoinDominance(ctx context.Context) (map[string]any, error)
	FiatExchangeRates(ctx context.Context, baseCurrency string) (map[string]any, error)
}

// MarketHandler serves the market-data tool endpoints.
type MarketHandler struct {
	client MarketAPI
}

func NewMarketHandler(client MarketAPI) *MarketHandler {
	return &MarketHandler{client: client}
}

// GetPrices handles GET /api/prices?ids=bitcoin,ethereum
func (h *MarketHandler) GetPrices(c *gin.Context) {
	data, err := h.client.CryptoPrices(c.Request.Context(), c.Query("ids"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// GetFearGreed handles GET /api/fear-greed
func (h *MarketHandler) GetFearGreed(c *gin.Context) {
	data, err := h.client.FearGreedIndex(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// GetDominance handles GET /api/dominance
func (h *MarketHandler) GetDominance(c *gin.Context) {
	data, err := h.client.BitcoinDominance(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// GetRates handles GET /api/rates/:base
func (h *MarketHandler) GetRates(c *gin.Context) {
	data, err := h.client.FiatExchangeRates(c.Request.Context(), c.Param("base"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindInvalidArgument:
		return http.StatusBadRequest
	case errs.KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}
