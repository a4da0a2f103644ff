// Package dashboard implements the client-side orchestration layer of the
// Agent Fetch dashboard: it turns user input into backend requests, normalizes
// the responses, keeps a per-session series for charting, and mirrors the
// server-owned schedules and history feed.
package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects which lookup surface is active: weather or crypto.
type Mode int

const (
	ModeWeather Mode = iota
	ModeCrypto
)

func (m Mode) String() string {
	if m == ModeCrypto {
		return "crypto"
	}
	return "weather"
}

// inputField names the expected input for validation messages.
func (m Mode) inputField() string {
	if m == ModeCrypto {
		return "coin id"
	}
	return "city"
}

// RawPayload is the provider's original JSON, kept only for diagnostic display.
type RawPayload = json.RawMessage

// WeatherReading is the normalized result of a weather lookup.
type WeatherReading struct {
	LocationName string
	Country      string
	TemperatureC float64
	FeelsLikeC   float64
	HumidityPct  int
	Description  string
}

// CryptoReading is the normalized result of a crypto lookup.
type CryptoReading struct {
	CoinID       string
	PriceUSD     float64
	Change24hPct *float64 // nil when the provider omits it
}

// Reading is a tagged union over the two lookup result shapes. Exactly one of
// Weather/Crypto is set, matching Mode.
type Reading struct {
	Mode    Mode
	Weather *WeatherReading
	Crypto  *CryptoReading
}

// EntityKey returns the canonical identity used to partition session history:
// the server-cased city name, or the lower-cased coin id.
func (r Reading) EntityKey() string {
	if r.Mode == ModeCrypto && r.Crypto != nil {
		return strings.ToLower(r.Crypto.CoinID)
	}
	if r.Weather != nil {
		return r.Weather.LocationName
	}
	return ""
}

// ChartValue returns the number charted for this reading: temperature for
// weather, USD price for crypto.
func (r Reading) ChartValue() float64 {
	if r.Mode == ModeCrypto && r.Crypto != nil {
		return r.Crypto.PriceUSD
	}
	if r.Weather != nil {
		return r.Weather.TemperatureC
	}
	return 0
}

// Summary renders the one-line result shown above the chart.
func (r Reading) Summary() string {
	if r.Mode == ModeCrypto && r.Crypto != nil {
		s := fmt.Sprintf("%s — $%.2f", r.Crypto.CoinID, r.Crypto.PriceUSD)
		if r.Crypto.Change24hPct != nil {
			s += fmt.Sprintf(" (%+.2f%% 24h)", *r.Crypto.Change24hPct)
		}
		return s
	}
	if r.Weather != nil {
		return fmt.Sprintf("%s, %s — %.1f°C", r.Weather.LocationName, r.Weather.Country, r.Weather.TemperatureC)
	}
	return ""
}

// ChatExchange is the single current question/answer pair of the chat surface.
type ChatExchange struct {
	Question string
	Answer   string
}

// Schedule mirrors a server-owned recurring check. The client never invents
// these; the list is a cache of the last successful fetch.
type Schedule struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	TimeOfDay  string `json:"time_of_day"`
	City       string `json:"city,omitempty"`
	Coin       string `json:"coin,omitempty"`
	LastRun    string `json:"last_run,omitempty"`
	NextRun    string `json:"next_run,omitempty"`
	LastStatus string `json:"last_status,omitempty"`
}

// ScheduleDraft is the create-request body. City/Coin are pointers so blank
// fields are transmitted as null, never as empty strings.
type ScheduleDraft struct {
	Name      string  `json:"name"`
	TimeOfDay string  `json:"time_of_day"`
	City      *string `json:"city"`
	Coin      *string `json:"coin"`
}

// FeedItem is a read-only entry of the server's audit history.
type FeedItem struct {
	Timestamp string          `json:"timestamp"`
	Kind      string          `json:"kind"`
	Query     string          `json:"query"`
	Result    json.RawMessage `json:"result"`
}
