package usecase

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/pricewatch/backend/internal/domain"
)

// CronParser accepts exactly the classic 5-field crontab format
// (minute hour dom month dow). Validation happens at creation/update
// time, never at fire time.
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ScheduleService manages cron-triggered notification schedules.
type ScheduleService struct {
	tags      domain.TagRepository
	schedules domain.ScheduleRepository
}

// NewScheduleService creates a new schedule service
func NewScheduleService(tags domain.TagRepository, schedules domain.ScheduleRepository) *ScheduleService {
	return &ScheduleService{tags: tags, schedules: schedules}
}

// CreateSchedule validates the tag reference and the cron expression, then
// creates an active schedule. The cron parse error is surfaced verbatim.
func (s *ScheduleService) CreateSchedule(ctx context.Context, tagID int64, cronExpr string) (*domain.Schedule, error) {
	if _, err := s.tags.GetTag(ctx, tagID); err != nil {
		return nil, err
	}
	if _, err := CronParser.Parse(cronExpr); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCron, err)
	}
	return s.schedules.CreateSchedule(ctx, tagID, cronExpr)
}

// ListSchedules returns all schedules, most recently created first.
func (s *ScheduleService) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	return s.schedules.ListSchedules(ctx)
}

// SetActive pauses or resumes a schedule.
func (s *ScheduleService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.schedules.SetScheduleActive(ctx, id, active)
}

// DeleteSchedule removes a schedule permanently.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id int64) error {
	return s.schedules.DeleteSchedule(ctx, id)
}
