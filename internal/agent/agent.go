// Package agent runs the portfolio assistant on Gemini. It wires the
// local ledger tools and the market-data tools into the model's
// function-calling loop and turns one user message into one reply.
package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const modelName = "gemini-2.5-pro"

const systemPrompt = `
You are a helpful cryptocurrency portfolio management assistant integrated with WhatsApp.

Your capabilities include:
1. **Portfolio Management**: Register buy/sell transactions and query portfolio data
2. **Market Data**: Get real-time cryptocurrency prices, Fear & Greed Index, Bitcoin dominance, and fiat exchange rates
3. **WhatsApp Integration**: Send messages and respond to user queries

Key guidelines:
- Always be helpful, accurate, and concise in your responses
- When registering transactions, use the full CoinGecko coin ID (e.g., 'bitcoin', 'ethereum', 'solana')
- Format numbers clearly with appropriate decimal places
- Use emojis to make responses more engaging and readable
- If you need current market data to calculate portfolio values, use the market data tools first
- Always confirm transaction registrations with clear details
- Be proactive in providing relevant market insights when appropriate

For portfolio queries:
- Show transaction history when requested
- Calculate current portfolio values using live market data
- Provide insights on portfolio performance
- Suggest relevant market information based on holdings

Remember: You can access real-time market data through the market data tools, so always use current prices for calculations and insights.`

// Function is one callable tool exposed to the model.
type Function interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// Func implements Function from a declaration and a closure.
type Func struct {
	Decl *genai.FunctionDeclaration
	Fn   func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Fn(ctx, id, args)
}

// Library dispatches a function call to the matching Function.
type Library func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse

func NewLibrary(functions []Function) Library {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		for _, f := range functions {
			if f.Declaration().Name == call.Name {
				return f.Call(ctx, call.ID, call.Args)
			}
		}
		return &genai.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
			Response: map[string]any{
				"error": fmt.Sprintf("unknown function %s", call.Name),
			},
		}
	}
}

func declarations(functions []Function) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		result = append(result, f.Declaration())
	}
	return result
}

// Agent is the assistant. Each Reply runs on a fresh chat, so it is
// safe to call from multiple workers.
type Agent struct {
	client  *genai.Client
	config  *genai.GenerateContentConfig
	library Library
}

// New creates the Gemini client and registers the tools. apiKey may
// be empty, in which case the client falls back to its own
// environment lookup.
func New(ctx context.Context, apiKey string, functions []Function) (*Agent, error) {
	var cc *genai.ClientConfig
	if apiKey != "" {
		cc = &genai.ClientConfig{APIKey: apiKey}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("error initializing Gemini client: %w", err)
	}

	return &Agent{
		client: client,
		config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: declarations(functions)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		},
		library: NewLibrary(functions),
	}, nil
}

// Reply answers one user message, dispatching function calls until
// the model produces text.
func (a *Agent) Reply(ctx context.Context, text string) (string, error) {
	chat, err := a.client.Chats.Create(ctx, modelName, a.config, nil)
	if err != nil {
		return "", fmt.Errorf("error creating chat: %w", err)
	}
	return a.ask(ctx, chat, &genai.Part{Text: text})
}

func (a *Agent) ask(ctx context.Context, chat *genai.Chat, parts ...*genai.Part) (string, error) {
	resp, err := chat.Send(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	part0 := resp.Candidates[0].Content.Parts[0]
	if part0.FunctionCall != nil {
		fresp := a.library(ctx, part0.FunctionCall)
		// Feed the result back until the model settles on text.
		return a.ask(ctx, chat, &genai.Part{FunctionResponse: fresp})
	}
	return part0.Text, nil
}
