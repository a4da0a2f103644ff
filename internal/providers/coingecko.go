package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

// CoinGecko fetches spot prices from the CoinGecko simple-price endpoint.
type CoinGecko struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewCoinGecko(client *http.Client) *CoinGecko {
	return &CoinGecko{
		name:    "coingecko",
		baseURL: "https://api.coingecko.com/api/v3/simple/price",
		httpCfg: defaultBackoff(client),
		circuit: defaultBreaker("coingecko"),
	}
}

// WithBaseURL overrides the upstream URL; used by tests.
func (p *CoinGecko) WithBaseURL(u string) *CoinGecko {
	p.baseURL = u
	return p
}

func (p *CoinGecko) Name() string {
	return p.name
}

func (p *CoinGecko) Price(ctx context.Context, coin string) (CoinQuote, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("ids", coin)
		values.Set("vs_currencies", "usd")
		values.Set("include_24hr_change", "true")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		if errors.Is(err, errRateLimited) {
			return CoinQuote{}, fmt.Errorf("crypto data provider is temporarily rate-limited, please try again in a few minutes")
		}
		var se *statusError
		if errors.As(err, &se) {
			return CoinQuote{}, fmt.Errorf("crypto API error (status %d), please try again later", se.code)
		}
		return CoinQuote{}, fmt.Errorf("network error while calling crypto API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return CoinQuote{}, fmt.Errorf("network error while calling crypto API: %w", err)
	}

	// CoinGecko shape: {"bitcoin": {"usd": 12345.67, "usd_24h_change": 1.23}}
	var payload map[string]struct {
		USD          *float64 `json:"usd"`
		USD24hChange *float64 `json:"usd_24h_change"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CoinQuote{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	// An unknown coin comes back as {} or without a usd price.
	entry, ok := payload[coin]
	if !ok || entry.USD == nil {
		return CoinQuote{}, fmt.Errorf("coin '%s' not found or has no USD price", coin)
	}

	return CoinQuote{
		CoinID:    coin,
		PriceUSD:  *entry.USD,
		Change24h: entry.USD24hChange,
		Raw:       raw,
	}, nil
}
