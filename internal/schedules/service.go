package schedules

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manikanta7cheruku/agent-fetch/internal/history"
	"github.com/manikanta7cheruku/agent-fetch/internal/providers"
)

// Schedules are expressed in IST (UTC+5:30) and stored as UTC instants.
var istOffset = 5*time.Hour + 30*time.Minute

var (
	ErrNotFound      = errors.New("schedule not found")
	ErrMissingTarget = errors.New("at least one of city or coin must be provided for a schedule")
)

// Schedule is a server-owned daily recurring check.
type Schedule struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	TimeOfDay  string `json:"time_of_day"` // "HH:MM", 24h
	City       string `json:"city,omitempty"`
	Coin       string `json:"coin,omitempty"`
	LastRun    string `json:"last_run,omitempty"`    // UTC, RFC3339
	NextRun    string `json:"next_run,omitempty"`    // UTC, RFC3339
	LastStatus string `json:"last_status,omitempty"` // summary of the last execution
}

// Service owns the schedule set and executes due schedules against the
// weather/crypto sources, logging each run into the history feed.
type Service struct {
	mu    sync.Mutex
	items map[string]*Schedule
	order []string // ids in creation order; listing preserves it

	weather providers.WeatherSource
	crypto  providers.CryptoSource
	log     *history.Log
	now     func() time.Time
}

func NewService(weather providers.WeatherSource, crypto providers.CryptoSource, hist *history.Log) *Service {
	return &Service{
		items:   make(map[string]*Schedule),
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

// Create registers a daily schedule. At least one of city or coin is required.
func (s *Service) Create(name, timeOfDay, city, coin string) (Schedule, error) {
	if city == "" && coin == "" {
		return Schedule{}, ErrMissingTarget
	}
	if name == "" {
		name = "Daily Check"
	}

	now := s.now()
	sched := &Schedule{
		ID:        uuid.New().String(),
		Name:      name,
		Enabled:   true,
		TimeOfDay: timeOfDay,
		City:      city,
		Coin:      coin,
		NextRun:   nextRun(timeOfDay, now).Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sched.ID] = sched
	s.order = append(s.order, sched.ID)
	return *sched, nil
}

// List returns all schedules in creation order.
func (s *Service) List() []Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Schedule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// SetEnabled toggles a schedule on or off.
func (s *Service) SetEnabled(id string, enabled bool) (Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.items[id]
	if !ok {
		return Schedule{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sched.Enabled = enabled
	if enabled && sched.NextRun == "" {
		sched.NextRun = nextRun(sched.TimeOfDay, s.now()).Format(time.RFC3339)
	}
	return *sched, nil
}

// Delete removes a schedule by id.
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

// RunDue executes every enabled schedule whose next run time has passed.
func (s *Service) RunDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []*Schedule
	for _, id := range s.order {
		sched := s.items[id]
		if !sched.Enabled || sched.NextRun == "" {
			continue
		}
		nextAt, err := time.Parse(time.RFC3339, sched.NextRun)
		if err != nil {
			nextAt = now
		}
		if !now.Before(nextAt) {
			due = append(due, sched)
		}
	}
	s.mu.Unlock()

	for _, sched := range due {
		s.execute(ctx, sched, now)
	}
}

// execute runs one schedule: checks its weather and/or crypto target, updates
// the run bookkeeping and appends an agent-style history entry.
func (s *Service) execute(ctx context.Context, sched *Schedule, runTime time.Time) {
	var parts []string

	if sched.City != "" {
		obs, err := s.weather.Current(ctx, sched.City)
		if err != nil {
			parts = append(parts, fmt.Sprintf("%s: weather error (%v)", sched.City, err))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %.1f°C, %s", sched.City, obs.TemperatureC, obs.Description))
		}
	}

	if sched.Coin != "" {
		quote, err := s.crypto.Price(ctx, sched.Coin)
		if err != nil {
			parts = append(parts, fmt.Sprintf("%s: crypto error (%v)", strings.ToUpper(sched.Coin), err))
		} else {
			text := fmt.Sprintf("%s: $%.2f", strings.ToUpper(sched.Coin), quote.PriceUSD)
			if quote.Change24h != nil {
				text += fmt.Sprintf(" (%+.2f%% 24h)", *quote.Change24h)
			}
			parts = append(parts, text)
		}
	}

	summary := "No tools configured for this schedule."
	if len(parts) > 0 {
		summary = strings.Join(parts, " | ")
	}

	s.mu.Lock()
	sched.LastRun = runTime.Format(time.RFC3339)
	sched.LastStatus = summary
	sched.NextRun = nextRun(sched.TimeOfDay, runTime).Format(time.RFC3339)
	s.mu.Unlock()

	log.Printf("INFO: schedule %q ran: %s", sched.Name, summary)
	s.log.Add(history.KindAgent, "[Schedule] "+sched.Name, map[string]string{"answer": summary})
}

// nextRun computes the next UTC instant matching an IST HH:MM time of day.
// An unparsable time falls back to one minute from now.
func nextRun(timeOfDay string, from time.Time) time.Time {
	hour, minute, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return from.Add(time.Minute)
	}

	nowIST := from.Add(istOffset)
	candidate := time.Date(nowIST.Year(), nowIST.Month(), nowIST.Day(), hour, minute, 0, 0, time.UTC)
	if !candidate.After(nowIST) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate.Add(-istOffset)
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	fields := strings.SplitN(s, ":", 2)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	minute, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	return hour, minute, nil
}
