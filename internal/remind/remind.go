// Package remind decides when event reminders are due and delivers them.
//
// A reminder is due once the wall clock passes start_time minus the event's
// reminder lead-time. Delivery marks the event notified so a reminder fires
// exactly once.
package remind

import (
	"context"
	"fmt"
	"time"

	"github.com/trmanh/nhac/internal/store"
)

// Notifier receives an event whose reminder window has opened.
type Notifier func(e *store.Event)

// Due filters events whose reminder should fire at now. Pure: already
// notified events are skipped, everything else is kept when
// now >= start_time − reminder_minutes.
func Due(events []*store.Event, now time.Time) []*store.Event {
	var due []*store.Event
	for _, e := range events {
		if e.Notified {
			continue
		}
		remindAt := e.StartTime.Add(-time.Duration(e.ReminderMinutes) * time.Minute)
		if !now.Before(remindAt) {
			due = append(due, e)
		}
	}
	return due
}

// Checker loads pending events from the store and delivers due reminders.
type Checker struct {
	store  store.Store
	notify Notifier
}

// NewChecker creates a checker delivering through notify.
func NewChecker(s store.Store, notify Notifier) *Checker {
	return &Checker{store: s, notify: notify}
}

// Check runs one reminder pass at the given instant and returns how many
// reminders were delivered. Each delivered event is marked notified before
// the next one is processed, so a crash mid-pass never double-delivers the
// events already handled.
func (c *Checker) Check(ctx context.Context, now time.Time) (int, error) {
	pending, err := c.store.UnnotifiedEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading pending events: %w", err)
	}

	delivered := 0
	for _, e := range Due(pending, now) {
		if c.notify != nil {
			c.notify(e)
		}
		if err := c.store.MarkNotified(ctx, e.ID); err != nil {
			return delivered, fmt.Errorf("marking event %d notified: %w", e.ID, err)
		}
		delivered++
	}
	return delivered, nil
}
