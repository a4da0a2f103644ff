package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manikanta7cheruku/agent-fetch/internal/history"
	"github.com/manikanta7cheruku/agent-fetch/internal/providers"
)

// Type selects what an alert watches.
type Type string

const (
	TypeCryptoChange Type = "crypto_change" // threshold is a 24h % change
	TypeWeatherTemp  Type = "weather_temp"  // threshold is a temperature in °C
)

// Operator compares the observed value against the threshold.
type Operator string

const (
	OperatorAbove Operator = ">"
	OperatorBelow Operator = "<"
)

var (
	ErrNotFound     = errors.New("alert not found")
	ErrCoinRequired = errors.New("coin is required for crypto_change alerts")
	ErrCityRequired = errors.New("city is required for weather_temp alerts")
)

// Alert is a server-owned threshold watch.
type Alert struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Enabled     bool     `json:"enabled"`
	Type        Type     `json:"type"`
	Operator    Operator `json:"operator"`
	Threshold   float64  `json:"threshold"`
	Coin        string   `json:"coin,omitempty"`
	City        string   `json:"city,omitempty"`
	LastTrigger string   `json:"last_trigger,omitempty"` // UTC, RFC3339
	LastStatus  string   `json:"last_status,omitempty"`
}

// Service owns the alert set and evaluates it against live provider data.
type Service struct {
	mu    sync.Mutex
	items map[string]*Alert
	order []string

	weather providers.WeatherSource
	crypto  providers.CryptoSource
	log     *history.Log
	now     func() time.Time
}

func NewService(weather providers.WeatherSource, crypto providers.CryptoSource, hist *history.Log) *Service {
	return &Service{
		items:   make(map[string]*Alert),
		weather: weather,
		crypto:  crypto,
		log:     hist,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create registers an alert. Type-specific target fields are required.
func (s *Service) Create(name string, typ Type, op Operator, threshold float64, coin, city string) (Alert, error) {
	if typ == TypeCryptoChange && coin == "" {
		return Alert{}, ErrCoinRequired
	}
	if typ == TypeWeatherTemp && city == "" {
		return Alert{}, ErrCityRequired
	}
	if name == "" {
		name = "Alert"
	}

	alert := &Alert{
		ID:        uuid.New().String(),
		Name:      name,
		Enabled:   true,
		Type:      typ,
		Operator:  op,
		Threshold: threshold,
		Coin:      coin,
		City:      city,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[alert.ID] = alert
	s.order = append(s.order, alert.ID)
	return *alert, nil
}

// List returns all alerts in creation order.
func (s *Service) List() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alert, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// SetEnabled toggles an alert on or off.
func (s *Service) SetEnabled(id string, enabled bool) (Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.items[id]
	if !ok {
		return Alert{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	alert.Enabled = enabled
	return *alert, nil
}

// Delete removes an alert by id.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Evaluate checks every enabled alert. A met condition appends an agent-style
// history entry; an unmet one only refreshes last_status.
func (s *Service) Evaluate(ctx context.Context) {
	s.mu.Lock()
	var enabled []*Alert
	for _, id := range s.order {
		if s.items[id].Enabled {
			enabled = append(enabled, s.items[id])
		}
	}
	s.mu.Unlock()

	now := s.now()
	for _, alert := range enabled {
		s.evaluateOne(ctx, alert, now)
	}
}

func (s *Service) evaluateOne(ctx context.Context, alert *Alert, runTime time.Time) {
	var value float64
	var status string

	switch {
	case alert.Type == TypeCryptoChange && alert.Coin != "":
		quote, err := s.crypto.Price(ctx, alert.Coin)
		if err != nil {
			s.setStatus(alert, fmt.Sprintf("%s: crypto alert error (%v)", strings.ToUpper(alert.Coin), err))
			return
		}
		if quote.Change24h == nil {
			s.setStatus(alert, fmt.Sprintf("%s: 24h change unavailable", strings.ToUpper(alert.Coin)))
			return
		}
		value = *quote.Change24h
		status = fmt.Sprintf("%s 24h change is %+.2f%% (%s %.2f%%)",
			strings.ToUpper(alert.Coin), value, alert.Operator, alert.Threshold)

	case alert.Type == TypeWeatherTemp && alert.City != "":
		obs, err := s.weather.Current(ctx, alert.City)
		if err != nil {
			s.setStatus(alert, fmt.Sprintf("%s: weather alert error (%v)", alert.City, err))
			return
		}
		value = obs.TemperatureC
		status = fmt.Sprintf("%s: %.1f°C (%s %.1f°C)", alert.City, value, alert.Operator, alert.Threshold)

	default:
		s.setStatus(alert, "Alert misconfigured (missing city/coin or unsupported type).")
		return
	}

	met := value > alert.Threshold
	if alert.Operator == OperatorBelow {
		met = value < alert.Threshold
	}

	if !met {
		s.setStatus(alert, status)
		return
	}

	s.mu.Lock()
	alert.LastTrigger = runTime.Format(time.RFC3339)
	alert.LastStatus = status
	s.mu.Unlock()

	log.Printf("INFO: alert %q triggered: %s", alert.Name, status)
	s.log.Add(history.KindAgent, "[Alert] "+alert.Name, map[string]string{"answer": status})
}

func (s *Service) setStatus(alert *Alert, status string) {
	s.mu.Lock()
	alert.LastStatus = status
	s.mu.Unlock()
}
