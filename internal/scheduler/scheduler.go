package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/manikanta7cheruku/agent-fetch/internal/alerts"
	"github.com/manikanta7cheruku/agent-fetch/internal/schedules"
)

// Runner drives the two background jobs: running due schedules and
// evaluating alerts.
type Runner struct {
	scheduler        *gocron.Scheduler
	schedules        *schedules.Service
	alerts           *alerts.Service
	scheduleInterval time.Duration
	alertInterval    time.Duration
}

// New creates a Runner over the given services.
func New(sched *schedules.Service, al *alerts.Service, scheduleInterval, alertInterval time.Duration) *Runner {
	return &Runner{
		scheduler:        gocron.NewScheduler(time.UTC),
		schedules:        sched,
		alerts:           al,
		scheduleInterval: scheduleInterval,
		alertInterval:    alertInterval,
	}
}

// Start registers both jobs and starts the underlying scheduler.
func (r *Runner) Start() error {
	schedMinutes := minutes(r.scheduleInterval, 1)
	_, err := r.scheduler.Every(schedMinutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		r.schedules.RunDue(ctx)
	})
	if err != nil {
		return err
	}

	alertMinutes := minutes(r.alertInterval, 5)
	_, err = r.scheduler.Every(alertMinutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		r.alerts.Evaluate(ctx)
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	log.Printf("INFO: scheduler started (schedules every %dm, alerts every %dm)", schedMinutes, alertMinutes)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Runner) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

func minutes(d time.Duration, def int) int {
	m := int(d.Minutes())
	if m <= 0 {
		return def
	}
	return m
}
