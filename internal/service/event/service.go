// Package event manages the event catalog the attendance core reads from.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/repository"
)

type Service struct {
	events repository.EventRepository
	logger zerolog.Logger
}

func NewService(events repository.EventRepository, logger zerolog.Logger) *Service {
	return &Service{events: events, logger: logger}
}

func (s *Service) Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("create event: invalid date %q: %w", req.Date, err)
	}
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		return nil, fmt.Errorf("create event: invalid start time %q: %w", req.StartTime, err)
	}
	if req.EndTime != "" {
		if _, err := time.Parse("15:04", req.EndTime); err != nil {
			return nil, fmt.Errorf("create event: invalid end time %q: %w", req.EndTime, err)
		}
	}

	attendanceType := model.AttendanceType(req.AttendanceType)
	if attendanceType == "" {
		attendanceType = model.AttendanceTypeBoth
	}

	event := &model.Event{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Venue:          req.Venue,
		Status:         model.EventStatusUpcoming,
		AttendanceType: attendanceType,
		Description:    req.Description,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("name", event.Name).Msg("event created")
	return event, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Event, error) {
	return s.events.List(ctx)
}
