package schedules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/manikanta7cheruku/agent-fetch/internal/history"
	"github.com/manikanta7cheruku/agent-fetch/internal/providers"
)

type fakeWeather struct {
	temp float64
	desc string
	err  error
}

func (f *fakeWeather) Current(_ context.Context, city string) (providers.WeatherObservation, error) {
	if f.err != nil {
		return providers.WeatherObservation{}, f.err
	}
	return providers.WeatherObservation{
		City:         city,
		TemperatureC: f.temp,
		FeelsLikeC:   f.temp,
		Description:  f.desc,
	}, nil
}

type fakeCrypto struct {
	price  float64
	change *float64
	err    error
}

func (f *fakeCrypto) Price(_ context.Context, coin string) (providers.CoinQuote, error) {
	if f.err != nil {
		return providers.CoinQuote{}, f.err
	}
	return providers.CoinQuote{CoinID: coin, PriceUSD: f.price, Change24h: f.change}, nil
}

func newTestService(now time.Time) (*Service, *history.Log) {
	hist := history.NewLog(200)
	change := 2.5
	svc := NewService(
		&fakeWeather{temp: 31.2, desc: "haze"},
		&fakeCrypto{price: 64250.55, change: &change},
		hist,
	).WithClock(func() time.Time { return now })
	return svc, hist
}

func TestCreateDefaultsAndNextRun(t *testing.T) {
	// 2026-03-14 10:00 UTC is 15:30 IST, so a 21:30 IST schedule is due the
	// same day at 16:00 UTC.
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	sched, err := svc.Create("", "21:30", "Hyderabad", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sched.Name != "Daily Check" {
		t.Errorf("expected the default name, got %q", sched.Name)
	}
	if !sched.Enabled {
		t.Error("expected new schedules enabled")
	}
	if sched.ID == "" {
		t.Error("expected a generated id")
	}
	if sched.NextRun != "2026-03-14T16:00:00Z" {
		t.Errorf("unexpected next run %q", sched.NextRun)
	}
}

func TestNextRunRollsToTomorrow(t *testing.T) {
	// 10:00 UTC is 15:30 IST; an 08:00 IST schedule already passed today.
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	sched, err := svc.Create("Morning", "08:00", "Pune", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// 08:00 IST on the 15th is 02:30 UTC on the 15th.
	if sched.NextRun != "2026-03-15T02:30:00Z" {
		t.Errorf("unexpected next run %q", sched.NextRun)
	}
}

func TestCreateRequiresTarget(t *testing.T) {
	svc, _ := newTestService(time.Now().UTC())
	if _, err := svc.Create("Empty", "08:00", "", ""); !errors.Is(err, ErrMissingTarget) {
		t.Errorf("expected ErrMissingTarget, got %v", err)
	}
}

func TestListPreservesCreationOrder(t *testing.T) {
	svc, _ := newTestService(time.Now().UTC())
	for _, name := range []string{"first", "second", "third"} {
		if _, err := svc.Create(name, "08:00", "Pune", ""); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	list := svc.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 schedules, got %d", len(list))
	}
	for i, want := range []string{"first", "second", "third"} {
		if list[i].Name != want {
			t.Errorf("position %d: expected %q, got %q", i, want, list[i].Name)
		}
	}
}

func TestSetEnabledAndDelete(t *testing.T) {
	svc, _ := newTestService(time.Now().UTC())
	sched, _ := svc.Create("toggle", "08:00", "Pune", "")

	updated, err := svc.SetEnabled(sched.ID, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Enabled {
		t.Error("expected the schedule disabled")
	}

	if _, err := svc.SetEnabled("missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := svc.Delete(sched.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Delete(sched.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
	if len(svc.List()) != 0 {
		t.Error("expected an empty list after delete")
	}
}

func TestRunDueExecutesAndReschedules(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc, hist := newTestService(now)

	if _, err := svc.Create("Check both", "21:30", "Hyderabad", "bitcoin"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Not yet due.
	svc.RunDue(context.Background())
	if got := svc.List()[0].LastRun; got != "" {
		t.Fatalf("expected no run before the due time, got %q", got)
	}

	// Jump past the due instant.
	later := time.Date(2026, 3, 14, 16, 5, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return later })
	svc.RunDue(context.Background())

	got := svc.List()[0]
	if got.LastRun != "2026-03-14T16:05:00Z" {
		t.Errorf("unexpected last run %q", got.LastRun)
	}
	if !strings.Contains(got.LastStatus, "Hyderabad: 31.2°C, haze") {
		t.Errorf("expected a weather part in %q", got.LastStatus)
	}
	if !strings.Contains(got.LastStatus, "BITCOIN: $64250.55 (+2.50% 24h)") {
		t.Errorf("expected a crypto part in %q", got.LastStatus)
	}
	// Rescheduled to the next day's 21:30 IST.
	if got.NextRun != "2026-03-15T16:00:00Z" {
		t.Errorf("unexpected next run %q", got.NextRun)
	}

	entries := hist.Recent(1)
	if len(entries) != 1 || entries[0].Query != "[Schedule] Check both" {
		t.Fatalf("expected a history entry for the run, got %+v", entries)
	}
	result, _ := json.Marshal(entries[0].Result)
	if !strings.Contains(string(result), "answer") {
		t.Errorf("expected an agent-style answer payload, got %s", result)
	}
}

func TestRunDueSkipsDisabled(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	sched, _ := svc.Create("off", "08:00", "Pune", "")
	svc.SetEnabled(sched.ID, false)

	svc.WithClock(func() time.Time { return now.Add(24 * time.Hour) })
	svc.RunDue(context.Background())

	if got := svc.List()[0].LastRun; got != "" {
		t.Errorf("expected disabled schedules skipped, got last run %q", got)
	}
}

func TestRunDueRecordsProviderErrors(t *testing.T) {
	hist := history.NewLog(200)
	svc := NewService(
		&fakeWeather{err: fmt.Errorf("city 'atlantis' not found")},
		&fakeCrypto{price: 1},
		hist,
	).WithClock(func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) })

	svc.Create("Broken", "08:00", "Atlantis", "")
	svc.WithClock(func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) })
	svc.RunDue(context.Background())

	status := svc.List()[0].LastStatus
	if !strings.Contains(status, "weather error") || !strings.Contains(status, "atlantis") {
		t.Errorf("expected the provider error in the status, got %q", status)
	}
}

func TestNextRunUnparsableTimeFallsBack(t *testing.T) {
	from := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	if got := nextRun("not-a-time", from); !got.Equal(from.Add(time.Minute)) {
		t.Errorf("expected a one-minute fallback, got %v", got)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"08:00", 8, 0, true},
		{"21:30", 21, 30, true},
		{"00:00", 0, 0, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"noon", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		hour, minute, err := parseTimeOfDay(tc.in)
		if tc.ok && (err != nil || hour != tc.hour || minute != tc.minute) {
			t.Errorf("%q: expected %02d:%02d, got %02d:%02d (%v)", tc.in, tc.hour, tc.minute, hour, minute, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%q: expected an error", tc.in)
		}
	}
}
