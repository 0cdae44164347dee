package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/tools"
)

// LocalFunctions exposes the portfolio ledger and the WhatsApp relay
// as model tools.
func LocalFunctions(tb *tools.Toolbox) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "register_transaction",
				Description: "Register a new crypto buy or sell transaction in the portfolio.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"asset_id": {
							Type:        genai.TypeString,
							Description: "CoinGecko coin ID, e.g. 'bitcoin' or 'ethereum'.",
						},
						"quantity": {
							Type:        genai.TypeNumber,
							Description: "Quantity of the asset traded. Must be positive.",
						},
						"unit_price": {
							Type:        genai.TypeNumber,
							Description: "Price in USD at the time of the transaction. Must be positive.",
						},
						"venue": {
							Type:        genai.TypeString,
							Description: "Exchange or venue where the trade happened.",
						},
						"side": {
							Type:        genai.TypeString,
							Description: "Either 'buy' or 'sell'.",
						},
					},
					Required: []string{"asset_id", "quantity", "unit_price", "venue", "side"},
				},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				out := tb.RegisterTransaction(
					strArg(args, "asset_id"),
					floatArg(args, "quantity"),
					floatArg(args, "unit_price"),
					strArg(args, "venue"),
					strArg(args, "side"),
				)
				return output("register_transaction", id, out)
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "query_portfolio",
				Description: "Query the portfolio: transaction history (optionally filtered by asset) and current holdings.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"asset_id": {
							Type:        genai.TypeString,
							Description: "Optional CoinGecko coin ID to filter by.",
						},
					},
				},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				return output("query_portfolio", id, tb.QueryPortfolio(strArg(args, "asset_id")))
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "send_whatsapp_message",
				Description: "Send a WhatsApp text message to a phone number. Only the authorized number is accepted.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"phone_number": {
							Type:        genai.TypeString,
							Description: "Recipient phone number, with or without the '@s.whatsapp.net' suffix.",
						},
						"message": {
							Type:        genai.TypeString,
							Description: "Text to send.",
						},
					},
					Required: []string{"phone_number", "message"},
				},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				out := tb.SendWhatsAppMessage(ctx, strArg(args, "phone_number"), strArg(args, "message"))
				return output("send_whatsapp_message", id, out)
			},
		},
	}
}

// MarketFunctions exposes the market-data tool service over HTTP.
func MarketFunctions(baseURL string) []Function {
	cli := &marketCaller{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     &http.Client{Timeout: 10 * time.Second},
	}

	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "get_crypto_prices",
				Description: "Get current USD prices for one or more cryptocurrencies by CoinGecko coin ID.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"coin_ids": {
							Type:        genai.TypeString,
							Description: "Comma-separated CoinGecko coin IDs, e.g. 'bitcoin,ethereum'.",
						},
					},
					Required: []string{"coin_ids"},
				},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				path := "/api/prices?ids=" + url.QueryEscape(strArg(args, "coin_ids"))
				return cli.get(ctx, "get_crypto_prices", id, path)
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "get_fear_and_greed_index",
				Description: "Get the current Crypto Fear & Greed Index.",
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				return cli.get(ctx, "get_fear_and_greed_index", id, "/api/fear-greed")
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "get_bitcoin_dominance",
				Description: "Get Bitcoin's market cap dominance percentage.",
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				return cli.get(ctx, "get_bitcoin_dominance", id, "/api/dominance")
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "get_fiat_exchange_rates",
				Description: "Get the latest fiat exchange rates for a base currency.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"base_currency": {
							Type:        genai.TypeString,
							Description: "3-letter currency code, e.g. 'USD' or 'EUR'.",
						},
					},
					Required: []string{"base_currency"},
				},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				path := "/api/rates/" + url.PathEscape(strings.ToUpper(strings.TrimSpace(strArg(args, "base_currency"))))
				return cli.get(ctx, "get_fiat_exchange_rates", id, path)
			},
		},
	}
}

type marketCaller struct {
	baseURL string
	cli     *http.Client
}

// get forwards one tool call to the market service and hands the JSON
// body back to the model, including its {error: ...} failures.
func (m *marketCaller) get(ctx context.Context, name, id, path string) *genai.FunctionResponse {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path, nil)
	if err != nil {
		return failure(name, id, err)
	}

	resp, err := m.cli.Do(req)
	if err != nil {
		return failure(name, id, err)
	}
	defer resp.Body.Close()

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return failure(name, id, fmt.Errorf("error decoding market service response: %w", err))
	}

	return &genai.FunctionResponse{ID: id, Name: name, Response: data}
}

func output(name, id string, out string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"output": out},
	}
}

func failure(name, id string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"error": err.Error()},
	}
}

func strArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func floatArg(args map[string]any, name string) float64 {
	switch v := args[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}
