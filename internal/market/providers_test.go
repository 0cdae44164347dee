package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/errs"
)

func TestCryptoPrices(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"bitcoin":{"usd":97000.5},"ethereum":{"usd":3500}}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.coinGeckoURL = srv.URL

	data, err := c.CryptoPrices(context.Background(), " Bitcoin, ETHEREUM ")
	if err != nil {
		t.Fatalf("CryptoPrices failed: %v", err)
	}
	if gotQuery != "ids=bitcoin%2Cethereum&vs_currencies=usd" {
		t.Errorf("Unexpected upstream query: %q", gotQuery)
	}
	if _, ok := data["bitcoin"]; !ok {
		t.Errorf("Expected bitcoin in response, got %v", data)
	}
}

func TestCryptoPrices_NoIDs(t *testing.T) {
	c := NewClient()

	_, err := c.CryptoPrices(context.Background(), " , ,")
	if !errs.IsInvalidArgument(err) {
		t.Fatalf("Expected invalid-argument error, got %v", err)
	}
	if err.Error() != "No valid coin IDs provided" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestCryptoPrices_UpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient()
	c.coinGeckoURL = srv.URL

	_, err := c.CryptoPrices(context.Background(), "bitcoin")
	if !errs.IsUpstreamUnavailable(err) {
		t.Fatalf("Expected upstream-unavailable error, got %v", err)
	}
	if err.Error() != "API request failed with status 429" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestBitcoinDominance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/global" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"market_cap_percentage":{"btc":54.3,"eth":17.1}}}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.coinGeckoURL = srv.URL

	data, err := c.BitcoinDominance(context.Background())
	if err != nil {
		t.Fatalf("BitcoinDominance failed: %v", err)
	}
	if data["bitcoin_dominance_percentage"] != 54.3 {
		t.Errorf("Expected dominance 54.3, got %v", data["bitcoin_dominance_percentage"])
	}
}

func TestFearGreedIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fng/" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":[{"value":"72","value_classification":"Greed"}]}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.fearGreedURL = srv.URL

	data, err := c.FearGreedIndex(context.Background())
	if err != nil {
		t.Fatalf("FearGreedIndex failed: %v", err)
	}
	if _, ok := data["data"]; !ok {
		t.Errorf("Expected data field in response, got %v", data)
	}
}

func TestFiatExchangeRates_InvalidCode(t *testing.T) {
	c := NewClient()

	for _, code := range []string{"", "US", "DOLLAR"} {
		_, err := c.FiatExchangeRates(context.Background(), code)
		if !errs.IsInvalidArgument(err) {
			t.Errorf("code=%q: expected invalid-argument error, got %v", code, err)
		}
	}
}

func TestFiatExchangeRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/USD" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"result":"success","rates":{"EUR":0.92,"BRL":5.4}}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.ratesURL = srv.URL

	data, err := c.FiatExchangeRates(context.Background(), " usd ")
	if err != nil {
		t.Fatalf("FiatExchangeRates failed: %v", err)
	}
	if data["result"] != "success" {
		t.Errorf("Unexpected response: %v", data)
	}
}
