package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jhcsc/attend-api/internal/model"
)

// uniqueViolation is the Postgres error code raised by the
// attendance_event_student_action_key constraint. The schema carries
// UNIQUE (event_id, student_id, action) so two near-simultaneous submissions
// for the same tuple cannot both commit; the loser surfaces as
// model.ErrDuplicateRecord.
const uniqueViolation = "23505"

// track counts one database operation on the attendance table. Duplicate
// inserts are an expected outcome of the uniqueness constraint, so they get
// their own status rather than inflating the error count.
func (r *attendanceRepository) track(op string, err error) {
	if r.metrics == nil {
		return
	}
	status := "success"
	switch {
	case errors.Is(err, model.ErrDuplicateRecord):
		status = "duplicate"
	case err != nil:
		status = "error"
	}
	r.metrics.DatabaseOperations.WithLabelValues(op, status).Inc()
}

func (r *attendanceRepository) Insert(ctx context.Context, record *model.AttendanceRecord) error {
	query := `
		INSERT INTO attendance (id, event_id, student_id, action, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Timestamp = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.EventID,
		record.StudentID,
		record.Action,
		record.Timestamp,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			err = model.ErrDuplicateRecord
		} else {
			err = fmt.Errorf("failed to insert attendance record: %w", err)
		}
	}
	r.track("insert_attendance", err)
	return err
}

func (r *attendanceRepository) QueryByEvent(ctx context.Context, eventID string) ([]*model.AttendanceRecord, error) {
	query := `
		SELECT id, event_id, student_id, action, timestamp
		FROM attendance
		WHERE event_id = $1
		ORDER BY timestamp ASC
	`
	var records []*model.AttendanceRecord
	err := r.db.SelectContext(ctx, &records, query, eventID)
	r.track("query_attendance_by_event", err)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance by event: %w", err)
	}
	return records, nil
}

func (r *attendanceRepository) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM attendance WHERE timestamp BETWEEN $1 AND $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, from, to)
	r.track("count_attendance", err)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance records: %w", err)
	}
	return count, nil
}

func (r *attendanceRepository) CountDaily(ctx context.Context, from, to time.Time) ([]model.DailyCount, error) {
	query := `
		SELECT to_char(timestamp::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
		FROM attendance
		WHERE timestamp >= $1 AND timestamp < $2
		GROUP BY timestamp::date
		ORDER BY timestamp::date ASC
	`
	var counts []model.DailyCount
	err := r.db.SelectContext(ctx, &counts, query, from, to)
	r.track("count_attendance_daily", err)
	if err != nil {
		return nil, fmt.Errorf("failed to count daily attendance: %w", err)
	}
	return counts, nil
}
