package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhcsc/attend-api/internal/model"
)

func (r *eventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	query := `
		SELECT id, name, date, start_time, end_time, venue, status,
			   attendance_type, description, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	var event model.Event
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*model.Event, error) {
	query := `
		SELECT id, name, date, start_time, end_time, venue, status,
			   attendance_type, description, created_at, updated_at
		FROM events
		ORDER BY date DESC, start_time ASC
	`
	var events []*model.Event
	err := r.db.SelectContext(ctx, &events, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	query := `
		INSERT INTO events (
			id, name, date, start_time, end_time, venue, status,
			attendance_type, description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Name,
		event.Date,
		event.StartTime,
		event.EndTime,
		event.Venue,
		event.Status,
		event.AttendanceType,
		event.Description,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *eventRepository) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM events WHERE date BETWEEN $1 AND $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
