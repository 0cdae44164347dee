// Package market wraps the public market-data endpoints the tool
// service exposes to agents: CoinGecko prices and global stats, the
// alternative.me Fear & Greed Index and open.er-api.com fiat rates.
//
// Each lookup is a single GET with a fixed timeout and no retry.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/errs"
)

const requestTimeout = 10 * time.Second

// Client queries the upstream market-data providers.
type Client struct {
	coinGeckoURL string
	fearGreedURL string
	ratesURL     string
	cli          *http.Client
}

func NewClient() *Client {
	return &Client{
		coinGeckoURL: "https://api.coingecko.com/api/v3",
		fearGreedURL: "https://api.alternative.me",
		ratesURL:     "https://open.er-api.com/v6",
		cli:          &http.Client{Timeout: requestTimeout},
	}
}

// CryptoPrices returns the current USD price for one or more
// CoinGecko coin ids, given comma-separated.
func (c *Client) CryptoPrices(ctx context.Context, coinIDs string) (map[string]any, error) {
	var ids []string
	for _, id := range strings.Split(coinIDs, ",") {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errs.InvalidArgument("No valid coin IDs provided")
	}

	log.Printf("Fetching crypto prices for: %v", ids)

	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		c.coinGeckoURL, url.QueryEscape(strings.Join(ids, ",")))

	var data map[string]any
	if err := c.getJSON(ctx, u, &data); err != nil {
		return nil, err
	}

	log.Printf("Successfully fetched prices for %d cryptocurrencies", len(data))
	return data, nil
}

// FearGreedIndex returns the latest Crypto Fear & Greed Index entry.
func (c *Client) FearGreedIndex(ctx context.Context) (map[string]any, error) {
	log.Println("Fetching Fear & Greed Index")

	var data map[string]any
	if err := c.getJSON(ctx, c.fearGreedURL+"/fng/?limit=1", &data); err != nil {
		return nil, err
	}
	return data, nil
}

// BitcoinDominance returns Bitcoin's share of the total crypto market
// cap as a percentage.
func (c *Client) BitcoinDominance(ctx context.Context) (map[string]any, error) {
	log.Println("Fetching Bitcoin Dominance")

	var raw struct {
		Data struct {
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.coinGeckoURL+"/global", &raw); err != nil {
		return nil, err
	}

	dominance := raw.Data.MarketCapPercentage["btc"]
	log.Printf("Successfully fetched Bitcoin Dominance: %v%%", dominance)
	return map[string]any{"bitcoin_dominance_percentage": dominance}, nil
}

// FiatExchangeRates returns the latest rates relative to a 3-letter
// base currency code.
func (c *Client) FiatExchangeRates(ctx context.Context, baseCurrency string) (map[string]any, error) {
	baseCurrency = strings.ToUpper(strings.TrimSpace(baseCurrency))
	if len(baseCurrency) != 3 {
		return nil, errs.InvalidArgument("Invalid currency code. Please provide a 3-letter currency code.")
	}

	log.Printf("Fetching exchange rates for base currency: %s", baseCurrency)

	var data map[string]any
	if err := c.getJSON(ctx, c.ratesURL+"/latest/"+baseCurrency, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errs.UpstreamUnavailable("error building request", err)
	}
	req.Header.Set("User-Agent", "whatsapp-portfolio-bot/1.0")

	resp, err := c.cli.Do(req)
	if err != nil {
		if isTimeout(err) {
			return errs.UpstreamUnavailable("Request timed out", nil)
		}
		return errs.UpstreamUnavailable("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.UpstreamUnavailable(fmt.Sprintf("API request failed with status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.UpstreamUnavailable("error decoding response", err)
	}
	return nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
