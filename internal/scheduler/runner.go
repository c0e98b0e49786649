package scheduler

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/pricewatch/backend/internal/usecase"
)

// RunnerConfig holds configuration for the fire loop
type RunnerConfig struct {
	// TickInterval must be at least as fine as the minute granularity
	// cron supports. Defaults to one minute.
	TickInterval time.Duration
	// Location is the fixed time zone schedules are evaluated in.
	// Defaults to UTC; never system-local.
	Location *time.Location
	// EventBuffer is the capacity of the outgoing event channel.
	EventBuffer int
}

// Runner is the schedule fire loop. It wakes every tick, evaluates all
// active schedules against the current wall-clock minute, and emits a
// NotificationEvent for each one that is due. Emission is at-least-once
// and fire-and-forget: consumers deduplicate on the event's DedupKey and
// own any retry.
type Runner struct {
	schedules domain.ScheduleRepository
	tags      domain.TagRepository

	interval time.Duration
	loc      *time.Location
	events   chan domain.NotificationEvent

	// busy guards against overlapping ticks: if one runs long, the next
	// is skipped rather than queued.
	busy atomic.Bool
}

// NewRunner creates a new fire loop runner
func NewRunner(schedules domain.ScheduleRepository, tags domain.TagRepository, config RunnerConfig) *Runner {
	interval := config.TickInterval
	if interval <= 0 {
		interval = time.Minute
	}
	loc := config.Location
	if loc == nil {
		loc = time.UTC
	}
	buffer := config.EventBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Runner{
		schedules: schedules,
		tags:      tags,
		interval:  interval,
		loc:       loc,
		events:    make(chan domain.NotificationEvent, buffer),
	}
}

// Events returns the channel notification events are emitted on.
func (r *Runner) Events() <-chan domain.NotificationEvent {
	return r.events
}

// Run drives the fire loop until ctx is cancelled. In-flight hand-offs
// complete; no new tick starts after cancellation.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("Scheduler: fire loop started (tick %s, zone %s)", r.interval, r.loc)
	for {
		select {
		case <-ctx.Done():
			log.Printf("Scheduler: fire loop stopped")
			return ctx.Err()
		case now := <-ticker.C:
			if !r.busy.CompareAndSwap(false, true) {
				// Previous tick still in flight; skip rather than queue.
				log.Printf("Scheduler: tick at %s skipped, previous tick still running", now.Format(time.RFC3339))
				continue
			}
			go func() {
				defer r.busy.Store(false)
				r.tick(ctx, now)
			}()
		}
	}
}

// tick evaluates every active schedule against the minute containing now
// and emits an event for each one that is due.
func (r *Runner) tick(ctx context.Context, now time.Time) {
	minute := now.In(r.loc).Truncate(time.Minute)

	active, err := r.schedules.ListActiveSchedules(ctx)
	if err != nil {
		log.Printf("Scheduler: listing active schedules: %v", err)
		return
	}

	for _, sch := range active {
		if !dueAt(sch.Cron, minute) {
			continue
		}

		// A dangling tag reference makes the schedule effectively inactive.
		if _, err := r.tags.GetTag(ctx, sch.TagID); err != nil {
			if errors.Is(err, domain.ErrTagNotFound) {
				log.Printf("Scheduler: schedule %d references missing tag %d, skipping", sch.ID, sch.TagID)
			} else {
				log.Printf("Scheduler: schedule %d: resolving tag %d: %v", sch.ID, sch.TagID, err)
			}
			continue
		}

		event := domain.NotificationEvent{
			ID:         uuid.NewString(),
			ScheduleID: sch.ID,
			TagID:      sch.TagID,
			FiredAt:    minute,
			DedupKey:   domain.EventDedupKey(sch.ID, minute),
		}
		select {
		case r.events <- event:
			log.Printf("Scheduler: fired schedule %d (tag %d) for %s", sch.ID, sch.TagID, minute.Format(time.RFC3339))
		default:
			// Never block the loop on a slow consumer.
			log.Printf("Scheduler: event buffer full, dropping fire for schedule %d at %s", sch.ID, minute.Format(time.RFC3339))
		}
	}
}

// dueAt reports whether the cron expression matches the given minute.
// Expressions are validated at schedule creation; a record that fails to
// parse here is skipped rather than taking the loop down.
func dueAt(cronExpr string, minute time.Time) bool {
	sched, err := usecase.CronParser.Parse(cronExpr)
	if err != nil {
		log.Printf("Scheduler: stored cron %q no longer parses: %v", cronExpr, err)
		return false
	}
	return sched.Next(minute.Add(-time.Second)).Equal(minute)
}
