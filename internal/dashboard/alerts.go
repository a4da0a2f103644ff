package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Alert mirrors a server-owned threshold watch. Alerts have no dashboard
// surface of their own; they are managed directly through the client.
type Alert struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Enabled     bool    `json:"enabled"`
	Type        string  `json:"type"`
	Operator    string  `json:"operator"`
	Threshold   float64 `json:"threshold"`
	Coin        string  `json:"coin,omitempty"`
	City        string  `json:"city,omitempty"`
	LastTrigger string  `json:"last_trigger,omitempty"`
	LastStatus  string  `json:"last_status,omitempty"`
}

// AlertDraft is the create-request body.
type AlertDraft struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Operator  string  `json:"operator"`
	Threshold float64 `json:"threshold"`
	Coin      *string `json:"coin"`
	City      *string `json:"city"`
}

// ListAlerts fetches all alerts in server order.
func (c *Client) ListAlerts(ctx context.Context) ([]Alert, error) {
	body, err := c.do(ctx, http.MethodGet, "/alerts", nil, nil)
	if err != nil {
		return nil, err
	}

	var items []Alert
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("unexpected alerts response format: %w", err)
	}
	return items, nil
}

// CreateAlert submits a new alert and returns the server's copy.
func (c *Client) CreateAlert(ctx context.Context, draft AlertDraft) (Alert, error) {
	body, err := c.do(ctx, http.MethodPost, "/alerts", nil, draft)
	if err != nil {
		return Alert{}, err
	}

	var out Alert
	if err := json.Unmarshal(body, &out); err != nil {
		return Alert{}, fmt.Errorf("unexpected alert response format: %w", err)
	}
	return out, nil
}

// SetAlertEnabled updates exactly the enabled field of one alert.
func (c *Client) SetAlertEnabled(ctx context.Context, id string, enabled bool) (Alert, error) {
	body, err := c.do(ctx, http.MethodPatch, "/alerts/"+url.PathEscape(id), nil, map[string]bool{"enabled": enabled})
	if err != nil {
		return Alert{}, err
	}

	var out Alert
	if err := json.Unmarshal(body, &out); err != nil {
		return Alert{}, fmt.Errorf("unexpected alert response format: %w", err)
	}
	return out, nil
}

// DeleteAlert removes an alert.
func (c *Client) DeleteAlert(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/alerts/"+url.PathEscape(id), nil, nil)
	return err
}
