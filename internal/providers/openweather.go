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

// OpenWeather fetches current conditions from OpenWeatherMap.
type OpenWeather struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeather(client *http.Client, apiKey string) *OpenWeather {
	return &OpenWeather{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: defaultBackoff(client),
		circuit: defaultBreaker("openweather"),
	}
}

// WithBaseURL overrides the upstream URL; used by tests.
func (p *OpenWeather) WithBaseURL(u string) *OpenWeather {
	p.baseURL = u
	return p
}

func (p *OpenWeather) Name() string {
	return p.name
}

func (p *OpenWeather) Current(ctx context.Context, city string) (WeatherObservation, error) {
	if p.apiKey == "" {
		return WeatherObservation{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			// OpenWeatherMap returns 404 for an unknown city.
			if se.code == http.StatusNotFound {
				return WeatherObservation{}, fmt.Errorf("city '%s' not found", city)
			}
			return WeatherObservation{}, fmt.Errorf("weather API error (status %d)", se.code)
		}
		return WeatherObservation{}, fmt.Errorf("network error while calling weather API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return WeatherObservation{}, fmt.Errorf("network error while calling weather API: %w", err)
	}

	var payload struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Main struct {
			Temp      *float64 `json:"temp"`
			FeelsLike *float64 `json:"feels_like"`
			Humidity  *int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return WeatherObservation{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	// Temperature and feels-like are required; anything else degrades gracefully.
	if payload.Main.Temp == nil || payload.Main.FeelsLike == nil {
		return WeatherObservation{}, fmt.Errorf("%w: missing temperature fields", ErrMalformedPayload)
	}

	obs := WeatherObservation{
		City:         payload.Name,
		Country:      payload.Sys.Country,
		TemperatureC: *payload.Main.Temp,
		FeelsLikeC:   *payload.Main.FeelsLike,
		Description:  "N/A",
		Raw:          raw,
	}
	if obs.City == "" {
		obs.City = city
	}
	if payload.Main.Humidity != nil {
		obs.Humidity = *payload.Main.Humidity
	}
	if len(payload.Weather) > 0 && payload.Weather[0].Description != "" {
		obs.Description = payload.Weather[0].Description
	}

	return obs, nil
}
