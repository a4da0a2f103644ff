package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/manikanta7cheruku/agent-fetch/internal/alerts"
	"github.com/manikanta7cheruku/agent-fetch/internal/history"
	"github.com/manikanta7cheruku/agent-fetch/internal/providers"
	"github.com/manikanta7cheruku/agent-fetch/internal/schedules"
)

type fakeWeather struct {
	err error
}

func (f *fakeWeather) Current(_ context.Context, city string) (providers.WeatherObservation, error) {
	if f.err != nil {
		return providers.WeatherObservation{}, f.err
	}
	return providers.WeatherObservation{
		City:         "Hyderabad",
		Country:      "IN",
		TemperatureC: 31.2,
		FeelsLikeC:   34.0,
		Humidity:     58,
		Description:  "haze",
		Raw:          json.RawMessage(`{"main": {"temp": 31.2}}`),
	}, nil
}

type fakeCrypto struct {
	err error
}

func (f *fakeCrypto) Price(_ context.Context, coin string) (providers.CoinQuote, error) {
	if f.err != nil {
		return providers.CoinQuote{}, f.err
	}
	change := -1.84
	return providers.CoinQuote{
		CoinID:    coin,
		PriceUSD:  64250.55,
		Change24h: &change,
		Raw:       json.RawMessage(`{"bitcoin": {"usd": 64250.55}}`),
	}, nil
}

type fakeAgent struct {
	answer string
	err    error
}

func (f *fakeAgent) Answer(_ context.Context, _ string) (string, error) {
	return f.answer, f.err
}

func newTestApp(deps Deps) *fiber.App {
	if deps.History == nil {
		deps.History = history.NewLog(200)
	}
	if deps.Schedules == nil {
		deps.Schedules = schedules.NewService(deps.Weather, deps.Crypto, deps.History)
	}
	if deps.Alerts == nil {
		deps.Alerts = alerts.NewService(deps.Weather, deps.Crypto, deps.History)
	}
	return NewServer(deps)
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, payload
}

func TestHealth(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	code, body := doJSON(t, app, http.MethodGet, "/health", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("unexpected body %s", body)
	}
}

func TestWeatherEndpoint(t *testing.T) {
	hist := history.NewLog(200)
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}, History: hist})

	code, body := doJSON(t, app, http.MethodGet, "/api/weather?city=hyderabad", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}

	var resp struct {
		City         string          `json:"city"`
		Country      string          `json:"country"`
		TemperatureC float64         `json:"temperature_c"`
		Raw          json.RawMessage `json:"raw"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unparsable body: %v", err)
	}
	if resp.City != "Hyderabad" || resp.TemperatureC != 31.2 {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.Raw) == 0 {
		t.Error("expected the raw payload in the response")
	}

	entries := hist.Recent(1)
	if len(entries) != 1 || entries[0].Kind != history.KindWeather || entries[0].Query != "hyderabad" {
		t.Errorf("expected a weather history entry, got %+v", entries)
	}
}

func TestWeatherEndpointRequiresCity(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	code, body := doJSON(t, app, http.MethodGet, "/api/weather", "")
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(string(body), "city query parameter is required.") {
		t.Errorf("unexpected detail %s", body)
	}
}

func TestWeatherEndpointProviderError(t *testing.T) {
	app := newTestApp(Deps{
		Weather: &fakeWeather{err: fmt.Errorf("city 'atlantis' not found")},
		Crypto:  &fakeCrypto{},
		Agent:   &fakeAgent{},
	})

	code, body := doJSON(t, app, http.MethodGet, "/api/weather?city=atlantis", "")
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}

	var detail struct {
		Detail string `json:"detail"`
	}
	json.Unmarshal(body, &detail)
	if detail.Detail != "city 'atlantis' not found" {
		t.Errorf("unexpected detail %q", detail.Detail)
	}
}

func TestWeatherEndpointMalformedUpstream(t *testing.T) {
	app := newTestApp(Deps{
		Weather: &fakeWeather{err: fmt.Errorf("%w: missing temperature fields", providers.ErrMalformedPayload)},
		Crypto:  &fakeCrypto{},
		Agent:   &fakeAgent{},
	})

	code, body := doJSON(t, app, http.MethodGet, "/api/weather?city=hyderabad", "")
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if !strings.Contains(string(body), "Weather data format unexpected from API.") {
		t.Errorf("unexpected detail %s", body)
	}
}

func TestCryptoEndpointLowercasesCoin(t *testing.T) {
	hist := history.NewLog(200)
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}, History: hist})

	code, body := doJSON(t, app, http.MethodGet, "/api/crypto?coin=BitCoin", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}

	var resp struct {
		CoinID    string   `json:"coin_id"`
		PriceUSD  float64  `json:"price_usd"`
		Change24h *float64 `json:"change_24h"`
	}
	json.Unmarshal(body, &resp)
	if resp.CoinID != "bitcoin" {
		t.Errorf("expected the lower-cased coin id, got %q", resp.CoinID)
	}
	if resp.Change24h == nil || *resp.Change24h != -1.84 {
		t.Errorf("unexpected change %+v", resp.Change24h)
	}

	entries := hist.Recent(1)
	if len(entries) != 1 || entries[0].Query != "bitcoin" {
		t.Errorf("expected a crypto history entry keyed by the coin id, got %+v", entries)
	}
}

func TestChatEndpoint(t *testing.T) {
	hist := history.NewLog(200)
	app := newTestApp(Deps{
		Weather: &fakeWeather{},
		Crypto:  &fakeCrypto{},
		Agent:   &fakeAgent{answer: "BTC is at $64250.55."},
		History: hist,
	})

	code, body := doJSON(t, app, http.MethodPost, "/api/agent/chat", `{"message": "what is btc at?"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	if !strings.Contains(string(body), "BTC is at $64250.55.") {
		t.Errorf("unexpected body %s", body)
	}

	entries := hist.Recent(1)
	if len(entries) != 1 || entries[0].Kind != history.KindAgent {
		t.Errorf("expected an agent history entry, got %+v", entries)
	}
}

func TestChatEndpointValidation(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	code, _ := doJSON(t, app, http.MethodPost, "/api/agent/chat", `{"message": "   "}`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for a blank message, got %d", code)
	}

	code, _ = doJSON(t, app, http.MethodPost, "/api/agent/chat", `not json`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad body, got %d", code)
	}
}

func TestChatEndpointAgentFailure(t *testing.T) {
	app := newTestApp(Deps{
		Weather: &fakeWeather{},
		Crypto:  &fakeCrypto{},
		Agent:   &fakeAgent{err: fmt.Errorf("LLM API error: quota exceeded")},
	})

	code, body := doJSON(t, app, http.MethodPost, "/api/agent/chat", `{"message": "hello"}`)
	if code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", code)
	}
	if !strings.Contains(string(body), "quota exceeded") {
		t.Errorf("unexpected detail %s", body)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	hist := history.NewLog(200)
	hist.Add(history.KindWeather, "pune", map[string]any{"temperature_c": 27.0})
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}, History: hist})

	code, body := doJSON(t, app, http.MethodGet, "/api/history?limit=5", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var items []history.Entry
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("unparsable body: %v", err)
	}
	if len(items) != 1 || items[0].Query != "pune" {
		t.Errorf("unexpected items %+v", items)
	}

	code, _ = doJSON(t, app, http.MethodGet, "/api/history?limit=0", "")
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for limit=0, got %d", code)
	}
	code, _ = doJSON(t, app, http.MethodGet, "/api/history?limit=500", "")
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for limit=500, got %d", code)
	}
}

func TestHistoryEndpointEmptyIsArray(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	_, body := doJSON(t, app, http.MethodGet, "/api/history", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected an empty array, got %s", body)
	}
}

func TestScheduleCRUD(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	code, body := doJSON(t, app, http.MethodPost, "/api/schedules",
		`{"name": "", "time_of_day": "", "city": "Hyderabad", "coin": null}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}

	var created schedules.Schedule
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unparsable body: %v", err)
	}
	if created.Name != "Daily Check" || created.TimeOfDay != "08:00" {
		t.Errorf("expected defaults applied, got %+v", created)
	}
	if created.NextRun == "" {
		t.Error("expected a computed next run")
	}

	code, body = doJSON(t, app, http.MethodGet, "/api/schedules", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var list []schedules.Schedule
	json.Unmarshal(body, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	code, body = doJSON(t, app, http.MethodPatch, "/api/schedules/"+created.ID, `{"enabled": false}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var updated schedules.Schedule
	json.Unmarshal(body, &updated)
	if updated.Enabled {
		t.Error("expected the schedule disabled")
	}

	code, _ = doJSON(t, app, http.MethodDelete, "/api/schedules/"+created.ID, "")
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}

	code, body = doJSON(t, app, http.MethodDelete, "/api/schedules/"+created.ID, "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if !strings.Contains(string(body), created.ID) {
		t.Errorf("expected the id in the detail, got %s", body)
	}
}

func TestScheduleCreateValidation(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	code, body := doJSON(t, app, http.MethodPost, "/api/schedules",
		`{"name": "Empty", "time_of_day": "08:00", "city": null, "coin": null}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(string(body), "At least one of city or coin") {
		t.Errorf("unexpected detail %s", body)
	}

	code, body = doJSON(t, app, http.MethodPost, "/api/schedules",
		`{"name": "Bad time", "time_of_day": "25:99", "city": "Pune"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(string(body), "HH:MM") {
		t.Errorf("unexpected detail %s", body)
	}
}

func TestScheduleEnabledRequired(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	code, _ := doJSON(t, app, http.MethodPatch, "/api/schedules/some-id", `{}`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 without an enabled field, got %d", code)
	}
}

func TestAlertCRUD(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	code, body := doJSON(t, app, http.MethodPost, "/api/alerts",
		`{"name": "BTC pump", "type": "crypto_change", "operator": ">", "threshold": 5, "coin": "BitCoin"}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	var created alerts.Alert
	json.Unmarshal(body, &created)
	if created.Coin != "bitcoin" {
		t.Errorf("expected the lower-cased coin, got %q", created.Coin)
	}

	code, _ = doJSON(t, app, http.MethodPatch, "/api/alerts/"+created.ID, `{"enabled": false}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	code, _ = doJSON(t, app, http.MethodDelete, "/api/alerts/"+created.ID, "")
	if code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
}

func TestAlertCreateValidation(t *testing.T) {
	app := newTestApp(Deps{Weather: &fakeWeather{}, Crypto: &fakeCrypto{}, Agent: &fakeAgent{}})

	// Threshold is mandatory.
	code, _ := doJSON(t, app, http.MethodPost, "/api/alerts", `{"name": "no threshold", "coin": "bitcoin"}`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 without a threshold, got %d", code)
	}

	// A crypto alert needs a coin.
	code, body := doJSON(t, app, http.MethodPost, "/api/alerts", `{"name": "no coin", "threshold": 5}`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 without a coin, got %d", code)
	}
	if !strings.Contains(string(body), "coin is required") {
		t.Errorf("unexpected detail %s", body)
	}

	code, _ = doJSON(t, app, http.MethodPost, "/api/alerts", `{"name": "bad type", "type": "volume", "threshold": 5}`)
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown type, got %d", code)
	}
}
