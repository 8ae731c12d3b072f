// Package attendance owns the submission ledger: exactly one record per
// (event, student, action), duplicates rejected by the store rather than by a
// read-then-write check.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/repository"
	"github.com/jhcsc/attend-api/pkg/metrics"
)

// chartDays is the dashboard chart horizon.
const chartDays = 30

// upcomingHorizon bounds the "upcoming events" dashboard counter.
const upcomingHorizon = 365 * 24 * time.Hour

type Service struct {
	events   repository.EventRepository
	students repository.StudentRepository
	records  repository.AttendanceRepository
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(events repository.EventRepository, students repository.StudentRepository, records repository.AttendanceRepository, mtr *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		events:   events,
		students: students,
		records:  records,
		metrics:  mtr,
		logger:   logger,
	}
}

// Record writes one attendance record. The event and student must exist; a
// second submission for the same (event, student, action) returns
// model.ErrDuplicateRecord, no matter how close together the two arrive. The
// record timestamp is the write time, never caller-supplied.
func (s *Service) Record(ctx context.Context, eventID, studentID string, action model.AttendanceAction) (*model.AttendanceRecord, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("record attendance: invalid action %q", action)
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}

	record := &model.AttendanceRecord{
		EventID:   eventID,
		StudentID: studentID,
		Action:    action,
	}
	if err := s.records.Insert(ctx, record); err != nil {
		if errors.Is(err, model.ErrDuplicateRecord) {
			s.metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		s.metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("record attendance: %w", err)
	}

	s.metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	s.logger.Info().
		Str("event_id", eventID).
		Str("student_id", studentID).
		Str("action", string(action)).
		Msg("attendance recorded")
	return record, nil
}

// RecordByEmail resolves the student by roster email, then records.
func (s *Service) RecordByEmail(ctx context.Context, eventID, email string, action model.AttendanceAction) (*model.AttendanceRecord, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}
	return s.Record(ctx, eventID, student.ID, action)
}

// GetByEvent returns the event's records in submission order, oldest first.
func (s *Service) GetByEvent(ctx context.Context, eventID string) ([]*model.AttendanceRecord, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("attendance by event: %w", err)
	}
	records, err := s.records.QueryByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("attendance by event: %w", err)
	}
	return records, nil
}

// EventSheet pivots an event's records into one row per student with the IN
// and OUT timestamps side by side. Rows appear in the order students first
// checked in.
func (s *Service) EventSheet(ctx context.Context, eventID string) ([]*model.AttendanceSheetRow, error) {
	records, err := s.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rows := make([]*model.AttendanceSheetRow, 0)
	index := make(map[string]*model.AttendanceSheetRow)
	for _, record := range records {
		row, ok := index[record.StudentID]
		if !ok {
			row = &model.AttendanceSheetRow{StudentID: record.StudentID}
			if student, err := s.students.GetByID(ctx, record.StudentID); err == nil {
				row.Name = student.Name
				row.Program = student.Program
				row.Year = student.Year
			}
			index[record.StudentID] = row
			rows = append(rows, row)
		}
		ts := record.Timestamp
		switch record.Action {
		case model.ActionIn:
			row.TimeIn = &ts
		case model.ActionOut:
			row.TimeOut = &ts
		}
	}
	return rows, nil
}

// Stats backs the dashboard: roster size, events in the next year, today's
// submissions and a 30-day zero-filled chart.
func (s *Service) Stats(ctx context.Context) (*model.AttendanceStats, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	totalStudents, err := s.students.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	upcoming, err := s.events.CountBetween(ctx, today, today.Add(upcomingHorizon))
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	todayCount, err := s.records.CountBetween(ctx, today, today.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	chartStart := today.AddDate(0, 0, -(chartDays - 1))
	counted, err := s.records.CountDaily(ctx, chartStart, today.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	byDay := make(map[string]int, len(counted))
	for _, c := range counted {
		byDay[c.Date] = c.Count
	}
	chart := make([]model.DailyCount, 0, chartDays)
	for d := 0; d < chartDays; d++ {
		day := chartStart.AddDate(0, 0, d).Format("2006-01-02")
		chart = append(chart, model.DailyCount{Date: day, Count: byDay[day]})
	}

	return &model.AttendanceStats{
		TotalStudents:   totalStudents,
		UpcomingEvents:  upcoming,
		TodayAttendance: todayCount,
		DailyCounts:     chart,
	}, nil
}
