package dashboard

import (
	"context"
	"strings"
)

// Defaults applied to blank schedule form fields before submission.
const (
	defaultScheduleName = "Daily Check"
	defaultScheduleTime = "08:00"
)

// visibleScheduleCount is a presentation policy: the panel shows only the two
// most recently created schedules, newest first. The full server list is kept
// intact underneath.
const visibleScheduleCount = 2

// Schedules returns a copy of the schedules surface state.
func (d *Dashboard) Schedules() SchedulesView {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := d.sched
	view.Items = append([]Schedule(nil), d.sched.Items...)
	return view
}

// VisibleSchedules derives the truncated panel view from the full mirror.
func (d *Dashboard) VisibleSchedules() []Schedule {
	d.mu.Lock()
	items := append([]Schedule(nil), d.sched.Items...)
	d.mu.Unlock()

	start := len(items) - visibleScheduleCount
	if start < 0 {
		start = 0
	}
	tail := items[start:]

	out := make([]Schedule, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out
}

// RefreshSchedules reloads the full list from the server. On success the
// mirror is fully replaced (no merging); on failure it is left untouched and
// only the error slot is set. Concurrent reloads are allowed: last one wins.
func (d *Dashboard) RefreshSchedules(ctx context.Context) error {
	d.mu.Lock()
	d.sched.Phase = PhasePending
	d.mu.Unlock()

	items, err := d.api.ListSchedules(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sched.Phase = PhaseIdle

	if err != nil {
		d.sched.Err = asSurfaceError(err)
		return d.sched.Err
	}

	d.sched.Items = items
	d.sched.Err = nil
	return nil
}

// CreateSchedule validates and submits a new schedule, then reloads the list
// so the mirror reflects the server's confirmed state. Blank name/time get
// defaults; blank city/coin are transmitted as absent, and at least one of
// them must be present or the call fails client-side with zero network calls.
func (d *Dashboard) CreateSchedule(ctx context.Context, name, timeOfDay, city, coin string) error {
	name = strings.TrimSpace(name)
	timeOfDay = strings.TrimSpace(timeOfDay)
	city = strings.TrimSpace(city)
	coin = strings.ToLower(strings.TrimSpace(coin))

	if city == "" && coin == "" {
		verr := validationError("Please provide at least a city or a coin for the schedule.")
		d.mu.Lock()
		d.sched.Err = verr
		d.mu.Unlock()
		return verr
	}

	if name == "" {
		name = defaultScheduleName
	}
	if timeOfDay == "" {
		timeOfDay = defaultScheduleTime
	}

	draft := ScheduleDraft{Name: name, TimeOfDay: timeOfDay}
	if city != "" {
		draft.City = &city
	}
	if coin != "" {
		draft.Coin = &coin
	}

	if _, err := d.api.CreateSchedule(ctx, draft); err != nil {
		d.mu.Lock()
		d.sched.Err = asSurfaceError(err)
		d.mu.Unlock()
		return err
	}

	return d.RefreshSchedules(ctx)
}

// SetScheduleEnabled toggles one schedule and reloads the list on success.
func (d *Dashboard) SetScheduleEnabled(ctx context.Context, id string, enabled bool) error {
	if _, err := d.api.SetScheduleEnabled(ctx, id, enabled); err != nil {
		d.mu.Lock()
		d.sched.Err = asSurfaceError(err)
		d.mu.Unlock()
		return err
	}
	return d.RefreshSchedules(ctx)
}

// DeleteSchedule removes one schedule and reloads the list on success.
func (d *Dashboard) DeleteSchedule(ctx context.Context, id string) error {
	if err := d.api.DeleteSchedule(ctx, id); err != nil {
		d.mu.Lock()
		d.sched.Err = asSurfaceError(err)
		d.mu.Unlock()
		return err
	}
	return d.RefreshSchedules(ctx)
}
