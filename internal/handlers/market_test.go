package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/errs"
)

type fakeMarket struct {
	prices    map[string]any
	pricesErr error
}

func (f *fakeMarket) CryptoPrices(_ context.Context, _ string) (map[string]any, error) {
	return f.prices, f.pricesErr
}

func (f *fakeMarket) FearGreedIndex(_ context.Context) (map[string]any, error) {
	return map[string]any{"data": []any{}}, nil
}

func (f *fakeMarket) BitcoinDominance(_ context.Context) (map[string]any, error) {
	return map[string]any{"bitcoin_dominance_percentage": 54.3}, nil
}

func (f *fakeMarket) FiatExchangeRates(_ context.Context, base string) (map[string]any, error) {
	if len(base) != 3 {
		return nil, errs.InvalidArgument("Invalid currency code. Please provide a 3-letter currency code.")
	}
	return map[string]any{"result": "success"}, nil
}

func marketRouter(m MarketAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewMarketHandler(m)
	router.GET("/api/prices", h.GetPrices)
	router.GET("/api/dominance", h.GetDominance)
	router.GET("/api/rates/:base", h.GetRates)
	return router
}

func TestGetPrices(t *testing.T) {
	router := marketRouter(&fakeMarket{prices: map[string]any{"bitcoin": map[string]any{"usd": 97000.0}}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prices?ids=bitcoin", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["bitcoin"]; !ok {
		t.Errorf("Expected bitcoin in body, got %v", body)
	}
}

func TestGetPrices_InvalidArgumentIs400(t *testing.T) {
	router := marketRouter(&fakeMarket{pricesErr: errs.InvalidArgument("No valid coin IDs provided")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prices?ids=", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "No valid coin IDs provided" {
		t.Errorf("Unexpected error body: %v", body)
	}
}

func TestGetPrices_UpstreamErrorIs502(t *testing.T) {
	router := marketRouter(&fakeMarket{pricesErr: errs.UpstreamUnavailable("Request timed out", nil)})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prices?ids=bitcoin", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", w.Code)
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "Request timed out" {
		t.Errorf("Unexpected error body: %v", body)
	}
}

func TestGetDominance(t *testing.T) {
	router := marketRouter(&fakeMarket{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dominance", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]float64
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["bitcoin_dominance_percentage"] != 54.3 {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestGetRates_InvalidBase(t *testing.T) {
	router := marketRouter(&fakeMarket{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rates/XXXX", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}
