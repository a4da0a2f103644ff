// Package agent implements the weather/crypto question-answering agent: an
// OpenAI chat-completion loop that can call the two provider tools and
// summarize their results.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/manikanta7cheruku/agent-fetch/internal/providers"
)

const systemPrompt = `You are Agent Fetch, an AI assistant that specializes in:
- Current weather in cities
- Current cryptocurrency prices and their short-term behavior

You are connected to two tools:
- get_weather(city): returns current conditions (temperature in °C, feels_like, humidity, description).
- get_crypto_price(coin): returns the latest USD price and 24h percentage change.

Your domain is only weather and cryptocurrency markets. If a user asks for
something outside that domain, politely say you are currently limited to
weather and crypto data. Do not invent numbers or current conditions; for
real-time data rely on the tools. Interpret common tickers ("BTC" -> "bitcoin",
"ETH" -> "ethereum", "DOGE" -> "dogecoin"). Start with a 1-2 sentence summary
that directly answers the question, then optionally a short breakdown. Do not
mention internal tool names. If a tool call fails, do not fabricate data;
briefly explain what went wrong. For crypto investment questions add a short
"this is not financial advice" disclaimer.`

const mockAnswer = "Mock agent answer: in real mode I would call the weather and crypto " +
	"tools and summarize the results. (LLM_MODE=mock)"

// Agent answers natural-language weather/crypto questions. It is stateless:
// each Answer call is an independent conversation.
type Agent struct {
	client  *openai.Client
	model   string
	mock    bool
	weather providers.WeatherSource
	crypto  providers.CryptoSource
}

// Config configures the agent.
type Config struct {
	APIKey string
	Model  string
	Mock   bool
}

func New(cfg Config, weather providers.WeatherSource, crypto providers.CryptoSource) *Agent {
	a := &Agent{
		model:   cfg.Model,
		mock:    cfg.Mock,
		weather: weather,
		crypto:  crypto,
	}
	if !cfg.Mock {
		a.client = openai.NewClient(cfg.APIKey)
	}
	return a
}

func toolsSchema() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_weather",
				Description: "Get current weather conditions for a city.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"city": {"type": "string", "description": "Name of the city, e.g. 'Hyderabad', 'London'."}
					},
					"required": ["city"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_crypto_price",
				Description: "Get the latest price and 24h change for a cryptocurrency.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"coin": {"type": "string", "description": "Coin id, e.g. 'bitcoin', 'ethereum', 'dogecoin'."}
					},
					"required": ["coin"]
				}`),
			},
		},
	}
}

// Answer runs the two-step tool loop: ask the model, execute any requested
// tool calls, then ask again for the final answer.
func (a *Agent) Answer(ctx context.Context, userMessage string) (string, error) {
	if a.mock {
		return mockAnswer, nil
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userMessage},
	}

	first, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:      a.model,
		Messages:   messages,
		Tools:      toolsSchema(),
		ToolChoice: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("LLM API error: %w", err)
	}
	if len(first.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	firstMsg := first.Choices[0].Message
	if len(firstMsg.ToolCalls) == 0 {
		return firstMsg.Content, nil
	}

	messages = append(messages, firstMsg)
	for _, call := range firstMsg.ToolCalls {
		result := a.dispatch(ctx, call.Function.Name, call.Function.Arguments)
		messages = append(messages, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Name:       call.Function.Name,
			ToolCallID: call.ID,
			Content:    result,
		})
	}

	second, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API error: %w", err)
	}
	if len(second.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}
	return second.Choices[0].Message.Content, nil
}

// dispatch executes a tool call and returns a JSON string suitable to feed
// back to the model. Tool failures are reported in-band so the model can
// explain them instead of the whole request failing.
func (a *Agent) dispatch(ctx context.Context, name, rawArgs string) string {
	var args struct {
		City string `json:"city"`
		Coin string `json:"coin"`
	}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			log.Printf("ERROR: agent tool %s got unparsable arguments: %v", name, err)
		}
	}

	switch name {
	case "get_weather":
		if args.City == "" {
			return toolError(name, "missing required argument: city")
		}
		obs, err := a.weather.Current(ctx, args.City)
		if err != nil {
			return toolError(name, err.Error())
		}
		return toolResult(name, map[string]any{
			"city":          obs.City,
			"country":       obs.Country,
			"temperature_c": obs.TemperatureC,
			"feels_like_c":  obs.FeelsLikeC,
			"humidity":      obs.Humidity,
			"description":   obs.Description,
		})

	case "get_crypto_price":
		if args.Coin == "" {
			return toolError(name, "missing required argument: coin")
		}
		quote, err := a.crypto.Price(ctx, args.Coin)
		if err != nil {
			return toolError(name, err.Error())
		}
		result := map[string]any{
			"coin_id":   quote.CoinID,
			"price_usd": quote.PriceUSD,
		}
		if quote.Change24h != nil {
			result["change_24h"] = *quote.Change24h
		}
		return toolResult(name, result)

	default:
		return toolError(name, "unknown tool: "+name)
	}
}

func toolResult(tool string, result any) string {
	out, err := json.Marshal(map[string]any{"ok": true, "tool": tool, "result": result})
	if err != nil {
		return toolError(tool, "failed to encode tool result")
	}
	return string(out)
}

func toolError(tool, message string) string {
	out, _ := json.Marshal(map[string]any{"ok": false, "tool": tool, "error": message})
	return string(out)
}
