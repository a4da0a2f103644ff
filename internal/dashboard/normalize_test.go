package dashboard

import (
	"strings"
	"testing"
)

func TestNormalizeWeather(t *testing.T) {
	body := []byte(`{
		"city": "Hyderabad",
		"country": "IN",
		"temperature_c": 31.2,
		"feels_like_c": 34.0,
		"humidity": 58,
		"description": "haze",
		"raw": {"main": {"temp": 31.2}}
	}`)

	reading, raw, err := NormalizeWeather(body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reading.Mode != ModeWeather || reading.Weather == nil {
		t.Fatalf("expected a weather reading, got %+v", reading)
	}
	if reading.Weather.LocationName != "Hyderabad" {
		t.Errorf("expected server-cased city, got %q", reading.Weather.LocationName)
	}
	if reading.Weather.TemperatureC != 31.2 || reading.Weather.FeelsLikeC != 34.0 {
		t.Errorf("unexpected temperatures: %+v", reading.Weather)
	}
	if reading.Weather.HumidityPct != 58 {
		t.Errorf("expected humidity 58, got %d", reading.Weather.HumidityPct)
	}
	if !strings.Contains(string(raw), `"temp"`) {
		t.Errorf("expected raw payload to be preserved, got %s", raw)
	}
	if reading.EntityKey() != "Hyderabad" {
		t.Errorf("expected entity key Hyderabad, got %q", reading.EntityKey())
	}
	if reading.ChartValue() != 31.2 {
		t.Errorf("expected chart value 31.2, got %v", reading.ChartValue())
	}
}

func TestNormalizeWeatherMissingTemperature(t *testing.T) {
	body := []byte(`{"city": "Hyderabad", "description": "haze"}`)

	_, _, err := NormalizeWeather(body)
	if err == nil {
		t.Fatal("expected an error for a payload without temperature")
	}
}

func TestNormalizeWeatherOptionalFieldsAbsent(t *testing.T) {
	body := []byte(`{"city": "Pune", "temperature_c": 25.0}`)

	reading, raw, err := NormalizeWeather(body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reading.Weather.FeelsLikeC != 25.0 {
		t.Errorf("expected feels-like to fall back to temperature, got %v", reading.Weather.FeelsLikeC)
	}
	if reading.Weather.HumidityPct != 0 {
		t.Errorf("expected zero humidity, got %d", reading.Weather.HumidityPct)
	}
	// No raw field: the whole body stands in for it.
	if string(raw) != string(body) {
		t.Errorf("expected body as raw fallback, got %s", raw)
	}
}

func TestNormalizeCrypto(t *testing.T) {
	body := []byte(`{
		"coin_id": "bitcoin",
		"price_usd": 64250.55,
		"change_24h": -1.84,
		"raw": {"bitcoin": {"usd": 64250.55}}
	}`)

	reading, _, err := NormalizeCrypto(body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reading.Mode != ModeCrypto || reading.Crypto == nil {
		t.Fatalf("expected a crypto reading, got %+v", reading)
	}
	if reading.Crypto.PriceUSD != 64250.55 {
		t.Errorf("unexpected price: %v", reading.Crypto.PriceUSD)
	}
	if reading.Crypto.Change24hPct == nil || *reading.Crypto.Change24hPct != -1.84 {
		t.Errorf("unexpected 24h change: %+v", reading.Crypto.Change24hPct)
	}
	if reading.EntityKey() != "bitcoin" {
		t.Errorf("expected entity key bitcoin, got %q", reading.EntityKey())
	}
	if reading.ChartValue() != 64250.55 {
		t.Errorf("expected chart value to be the price, got %v", reading.ChartValue())
	}
}

func TestNormalizeCryptoMissingPrice(t *testing.T) {
	_, _, err := NormalizeCrypto([]byte(`{"coin_id": "bitcoin"}`))
	if err == nil {
		t.Fatal("expected an error for a payload without price")
	}
}

func TestNormalizeCryptoChangeOptional(t *testing.T) {
	reading, _, err := NormalizeCrypto([]byte(`{"coin_id": "monero", "price_usd": 160.0}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reading.Crypto.Change24hPct != nil {
		t.Errorf("expected nil 24h change, got %v", *reading.Crypto.Change24hPct)
	}
}
