package dashboard

import (
	"encoding/json"
	"fmt"
	"math"
)

// The normalizers are pure: wire JSON in, Reading out. Optional fields that
// are absent or of unexpected type are skipped; a missing or non-numeric
// required field (temperature, price) rejects the whole reading so a bogus
// zero is never charted.

type weatherWire struct {
	City         string          `json:"city"`
	Country      string          `json:"country"`
	TemperatureC *float64        `json:"temperature_c"`
	FeelsLikeC   *float64        `json:"feels_like_c"`
	Humidity     *int            `json:"humidity"`
	Description  string          `json:"description"`
	Raw          json.RawMessage `json:"raw"`
}

type cryptoWire struct {
	CoinID    string          `json:"coin_id"`
	PriceUSD  *float64        `json:"price_usd"`
	Change24h *float64        `json:"change_24h"`
	Raw       json.RawMessage `json:"raw"`
}

// NormalizeWeather maps a weather response body into a Reading plus the
// provider's raw payload (the body itself when no raw field is present).
func NormalizeWeather(body []byte) (Reading, RawPayload, error) {
	var wire weatherWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return Reading{}, nil, fmt.Errorf("unexpected weather response format: %w", err)
	}
	if wire.TemperatureC == nil || !isFinite(*wire.TemperatureC) {
		return Reading{}, nil, fmt.Errorf("weather response is missing a usable temperature")
	}

	reading := WeatherReading{
		LocationName: wire.City,
		Country:      wire.Country,
		TemperatureC: *wire.TemperatureC,
		FeelsLikeC:   *wire.TemperatureC,
		Description:  wire.Description,
	}
	if wire.FeelsLikeC != nil && isFinite(*wire.FeelsLikeC) {
		reading.FeelsLikeC = *wire.FeelsLikeC
	}
	if wire.Humidity != nil {
		reading.HumidityPct = *wire.Humidity
	}

	raw := wire.Raw
	if len(raw) == 0 {
		raw = body
	}
	return Reading{Mode: ModeWeather, Weather: &reading}, raw, nil
}

// NormalizeCrypto maps a crypto response body into a Reading plus the raw
// payload. The 24h change is optional and dropped when non-finite.
func NormalizeCrypto(body []byte) (Reading, RawPayload, error) {
	var wire cryptoWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return Reading{}, nil, fmt.Errorf("unexpected crypto response format: %w", err)
	}
	if wire.PriceUSD == nil || !isFinite(*wire.PriceUSD) {
		return Reading{}, nil, fmt.Errorf("crypto response is missing a usable price")
	}

	reading := CryptoReading{
		CoinID:   wire.CoinID,
		PriceUSD: *wire.PriceUSD,
	}
	if wire.Change24h != nil && isFinite(*wire.Change24h) {
		change := *wire.Change24h
		reading.Change24hPct = &change
	}

	raw := wire.Raw
	if len(raw) == 0 {
		raw = body
	}
	return Reading{Mode: ModeCrypto, Crypto: &reading}, raw, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
