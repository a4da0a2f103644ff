package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is the typed HTTP client for the Agent Fetch backend API. All
// failures come back as *SurfaceError so surfaces can route them into the
// right error slot.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for a base URL like "http://localhost:8000/api".
// A nil httpClient gets a default with a sane timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// errorBody is the backend's error shape. FastAPI-style: {"detail": "..."}.
type errorBody struct {
	Detail string `json:"detail"`
}

// do executes one request and returns the response body. Non-2xx responses
// are decoded into a classified *SurfaceError; an unparsable error body falls
// back to a generic message rather than failing the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: connection refused, DNS, timeout.
		return nil, networkError()
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		if err := json.Unmarshal(respBody, &eb); err == nil && eb.Detail != "" {
			return nil, serverError(eb.Detail)
		}
		return nil, &SurfaceError{
			Kind:    ErrorServer,
			Message: "The server returned an unexpected error (status " + strconv.Itoa(resp.StatusCode) + ").",
		}
	}

	return respBody, nil
}

// FetchWeather looks up current weather for a city and normalizes the result.
func (c *Client) FetchWeather(ctx context.Context, city string) (Reading, RawPayload, error) {
	query := url.Values{}
	query.Set("city", city)

	body, err := c.do(ctx, http.MethodGet, "/weather", query, nil)
	if err != nil {
		return Reading{}, nil, err
	}
	return NormalizeWeather(body)
}

// FetchCrypto looks up the current USD price for a coin id (already
// lower-cased by the dispatcher) and normalizes the result.
func (c *Client) FetchCrypto(ctx context.Context, coin string) (Reading, RawPayload, error) {
	query := url.Values{}
	query.Set("coin", coin)

	body, err := c.do(ctx, http.MethodGet, "/crypto", query, nil)
	if err != nil {
		return Reading{}, nil, err
	}
	return NormalizeCrypto(body)
}

// Chat sends a message to the agent and returns its answer.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/agent/chat", nil, map[string]string{"message": message})
	if err != nil {
		return "", err
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("unexpected chat response format: %w", err)
	}
	return out.Answer, nil
}

// RecentHistory fetches the server's audit feed, newest first.
func (c *Client) RecentHistory(ctx context.Context, limit int) ([]FeedItem, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, http.MethodGet, "/history", query, nil)
	if err != nil {
		return nil, err
	}

	var items []FeedItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("unexpected history response format: %w", err)
	}
	return items, nil
}

// ListSchedules fetches all schedules in server order.
func (c *Client) ListSchedules(ctx context.Context) ([]Schedule, error) {
	body, err := c.do(ctx, http.MethodGet, "/schedules", nil, nil)
	if err != nil {
		return nil, err
	}

	var items []Schedule
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("unexpected schedules response format: %w", err)
	}
	return items, nil
}

// CreateSchedule submits a new schedule and returns the server's copy.
func (c *Client) CreateSchedule(ctx context.Context, draft ScheduleDraft) (Schedule, error) {
	body, err := c.do(ctx, http.MethodPost, "/schedules", nil, draft)
	if err != nil {
		return Schedule{}, err
	}

	var out Schedule
	if err := json.Unmarshal(body, &out); err != nil {
		return Schedule{}, fmt.Errorf("unexpected schedule response format: %w", err)
	}
	return out, nil
}

// SetScheduleEnabled updates exactly the enabled field of one schedule.
func (c *Client) SetScheduleEnabled(ctx context.Context, id string, enabled bool) (Schedule, error) {
	body, err := c.do(ctx, http.MethodPatch, "/schedules/"+url.PathEscape(id), nil, map[string]bool{"enabled": enabled})
	if err != nil {
		return Schedule{}, err
	}

	var out Schedule
	if err := json.Unmarshal(body, &out); err != nil {
		return Schedule{}, fmt.Errorf("unexpected schedule response format: %w", err)
	}
	return out, nil
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/schedules/"+url.PathEscape(id), nil, nil)
	return err
}
