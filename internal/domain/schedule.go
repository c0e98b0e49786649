package domain

import (
	"fmt"
	"time"
)

// Schedule is a recurring cron-triggered notification bound to a tag.
// The cron expression is validated at creation/update time, never at fire
// time. The tag reference is non-owning: deleting the tag leaves the
// schedule in place but the fire loop skips it.
type Schedule struct {
	ID        int64     `json:"id"`
	TagID     int64     `json:"tagId"`
	Cron      string    `json:"cron"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationEvent is emitted when an active schedule's cron expression
// matches the current wall-clock minute. Delivery is at-least-once;
// consumers deduplicate on DedupKey.
type NotificationEvent struct {
	ID         string    `json:"id"`
	ScheduleID int64     `json:"scheduleId"`
	TagID      int64     `json:"tagId"`
	FiredAt    time.Time `json:"firedAt"`
	DedupKey   string    `json:"dedupKey"`
}

// EventDedupKey builds the idempotency key for one schedule firing in one
// wall-clock minute.
func EventDedupKey(scheduleID int64, minute time.Time) string {
	return fmt.Sprintf("%d@%s", scheduleID, minute.Truncate(time.Minute).Format(time.RFC3339))
}
