package providers

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrMalformedPayload signals that an upstream response was parseable JSON but
// missing fields we cannot do without (temperature, price). Callers map this
// to a 500-class error rather than a bad-request error.
var ErrMalformedPayload = errors.New("malformed provider payload")

// WeatherObservation is the normalized current-weather result for one city,
// with the provider's original payload retained for diagnostics.
type WeatherObservation struct {
	City         string
	Country      string
	TemperatureC float64
	FeelsLikeC   float64
	Humidity     int
	Description  string
	Raw          json.RawMessage
}

// CoinQuote is the normalized spot price for one coin.
type CoinQuote struct {
	CoinID    string
	PriceUSD  float64
	Change24h *float64 // nil when the provider omits it
	Raw       json.RawMessage
}

// WeatherSource abstracts the current-weather upstream (OpenWeatherMap).
type WeatherSource interface {
	Current(ctx context.Context, city string) (WeatherObservation, error)
}

// CryptoSource abstracts the crypto price upstream (CoinGecko).
type CryptoSource interface {
	Price(ctx context.Context, coin string) (CoinQuote, error)
}
