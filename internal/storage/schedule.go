package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pricewatch/backend/internal/domain"
)

// CreateSchedule inserts an active schedule. Cron and tag validation
// happen in the usecase layer before this is called.
func (s *Store) CreateSchedule(ctx context.Context, tagID int64, cron string) (*domain.Schedule, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO schedules (tag_id, cron, active) VALUES (?, ?, 1)", tagID, cron)
	if err != nil {
		return nil, fmt.Errorf("inserting schedule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading schedule id: %w", err)
	}
	return s.getSchedule(ctx, id)
}

// ListSchedules returns all schedules, most recently created first.
func (s *Store) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	return s.querySchedules(ctx, "SELECT id, tag_id, cron, active, created_at FROM schedules ORDER BY id DESC")
}

// ListActiveSchedules returns active schedules for the fire loop.
func (s *Store) ListActiveSchedules(ctx context.Context) ([]domain.Schedule, error) {
	return s.querySchedules(ctx, "SELECT id, tag_id, cron, active, created_at FROM schedules WHERE active = 1 ORDER BY id ASC")
}

// SetScheduleActive pauses or resumes a schedule.
func (s *Store) SetScheduleActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, "UPDATE schedules SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return fmt.Errorf("updating schedule %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating schedule %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

// DeleteSchedule removes a schedule permanently.
func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting schedule %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting schedule %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) getSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, tag_id, cron, active, created_at FROM schedules WHERE id = ?", id)
	var sch domain.Schedule
	if err := row.Scan(&sch.ID, &sch.TagID, &sch.Cron, &sch.Active, &sch.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("scanning schedule: %w", err)
	}
	return &sch, nil
}

func (s *Store) querySchedules(ctx context.Context, query string) ([]domain.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	defer rows.Close()

	var out []domain.Schedule
	for rows.Next() {
		var sch domain.Schedule
		if err := rows.Scan(&sch.ID, &sch.TagID, &sch.Cron, &sch.Active, &sch.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning schedule: %w", err)
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}
