package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/manikanta7cheruku/agent-fetch/internal/alerts"
	"github.com/manikanta7cheruku/agent-fetch/internal/history"
	"github.com/manikanta7cheruku/agent-fetch/internal/providers"
	"github.com/manikanta7cheruku/agent-fetch/internal/schedules"
	"github.com/manikanta7cheruku/agent-fetch/internal/storage"
)

var validate = validator.New()

// AgentService is the question-answering surface the chat endpoint fronts.
type AgentService interface {
	Answer(ctx context.Context, message string) (string, error)
}

// Deps bundles everything the API routes need.
type Deps struct {
	Weather   providers.WeatherSource
	Crypto    providers.CryptoSource
	Agent     AgentService
	History   *history.Log
	Schedules *schedules.Service
	Alerts    *alerts.Service
	Archive   *storage.Archive // optional; raw payload snapshots
}

// NewServer builds the fiber app with middleware, the centralized {detail}
// error body, the health endpoint and all API routes.
func NewServer(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "agent-fetch",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Error bodies always carry a human-readable detail string.
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"detail": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "agent-fetch",
		})
	})

	RegisterRoutes(app, deps)
	return app
}

// RegisterRoutes wires the API handlers into the Fiber app under /api.
func RegisterRoutes(app *fiber.App, deps Deps) {
	api := app.Group("/api")

	api.Get("/weather", func(c *fiber.Ctx) error {
		return handleWeather(c, deps)
	})
	api.Get("/crypto", func(c *fiber.Ctx) error {
		return handleCrypto(c, deps)
	})
	api.Post("/agent/chat", func(c *fiber.Ctx) error {
		return handleChat(c, deps)
	})
	api.Get("/history", func(c *fiber.Ctx) error {
		return handleHistory(c, deps)
	})

	registerScheduleRoutes(api, deps)
	registerAlertRoutes(api, deps)
}

type weatherResponse struct {
	City         string          `json:"city"`
	Country      string          `json:"country"`
	TemperatureC float64         `json:"temperature_c"`
	FeelsLikeC   float64         `json:"feels_like_c"`
	Humidity     int             `json:"humidity"`
	Description  string          `json:"description"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

func handleWeather(c *fiber.Ctx, deps Deps) error {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required.")
	}

	obs, err := deps.Weather.Current(c.Context(), city)
	if err != nil {
		if errors.Is(err, providers.ErrMalformedPayload) {
			return fiber.NewError(fiber.StatusInternalServerError, "Weather data format unexpected from API.")
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	resp := weatherResponse{
		City:         obs.City,
		Country:      obs.Country,
		TemperatureC: obs.TemperatureC,
		FeelsLikeC:   obs.FeelsLikeC,
		Humidity:     obs.Humidity,
		Description:  obs.Description,
		Raw:          obs.Raw,
	}

	archive(deps, "weather", city, obs.Raw)

	// The feed keeps the normalized reading only; raw stays in the archive.
	feedCopy := resp
	feedCopy.Raw = nil
	deps.History.Add(history.KindWeather, city, feedCopy)

	return c.JSON(resp)
}

type cryptoResponse struct {
	CoinID    string          `json:"coin_id"`
	PriceUSD  float64         `json:"price_usd"`
	Change24h *float64        `json:"change_24h,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

func handleCrypto(c *fiber.Ctx, deps Deps) error {
	coin := strings.ToLower(strings.TrimSpace(c.Query("coin")))
	if coin == "" {
		return fiber.NewError(fiber.StatusBadRequest, "coin query parameter is required.")
	}

	quote, err := deps.Crypto.Price(c.Context(), coin)
	if err != nil {
		if errors.Is(err, providers.ErrMalformedPayload) {
			return fiber.NewError(fiber.StatusInternalServerError, "Unexpected crypto data format from API.")
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	resp := cryptoResponse{
		CoinID:    quote.CoinID,
		PriceUSD:  quote.PriceUSD,
		Change24h: quote.Change24h,
		Raw:       quote.Raw,
	}

	archive(deps, "crypto", coin, quote.Raw)

	feedCopy := resp
	feedCopy.Raw = nil
	deps.History.Add(history.KindCrypto, coin, feedCopy)

	return c.JSON(resp)
}

type chatRequest struct {
	Message string `json:"message"`
}

func handleChat(c *fiber.Ctx, deps Deps) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required.")
	}

	answer, err := deps.Agent.Answer(c.Context(), req.Message)
	if err != nil {
		// Agent failures (quota, upstream API) surface as a bad gateway.
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	deps.History.Add(history.KindAgent, req.Message, fiber.Map{"answer": answer})

	return c.JSON(fiber.Map{"answer": answer})
}

func handleHistory(c *fiber.Ctx, deps Deps) error {
	limit := c.QueryInt("limit", 20)
	if err := validate.Var(limit, "gte=1,lte=200"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 200")
	}

	items := deps.History.Recent(limit)
	if items == nil {
		items = []history.Entry{}
	}
	return c.JSON(items)
}

func archive(deps Deps, category, name string, raw json.RawMessage) {
	if deps.Archive == nil || len(raw) == 0 {
		return
	}
	if _, err := deps.Archive.Save(category, name, raw); err != nil {
		log.Printf("ERROR: failed to archive %s payload for %s: %v", category, name, err)
	}
}
