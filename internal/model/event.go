package model

import (
	"time"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

type AttendanceType string

const (
	AttendanceTypeInOnly AttendanceType = "in_only"
	AttendanceTypeBoth   AttendanceType = "both"
)

// Event is owned by the event repository; the attendance core treats it as
// read-only input.
type Event struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Date           time.Time      `db:"date" json:"date"`
	StartTime      string         `db:"start_time" json:"start"`
	EndTime        string         `db:"end_time" json:"end"`
	Venue          string         `db:"venue" json:"venue"`
	Status         EventStatus    `db:"status" json:"status"`
	AttendanceType AttendanceType `db:"attendance_type" json:"attendanceType"`
	Description    string         `db:"description" json:"desc,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// EndsAt combines the event date with its end time. The second return is
// false when the event has no end boundary, which is the case for in-only
// events without an end time.
func (e *Event) EndsAt() (time.Time, bool) {
	if e.EndTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", e.EndTime)
	if err != nil {
		return time.Time{}, false
	}
	d := e.Date
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location()), true
}

type CreateEventRequest struct {
	Name           string `json:"name" binding:"required"`
	Date           string `json:"date" binding:"required"`
	StartTime      string `json:"start" binding:"required"`
	EndTime        string `json:"end"`
	Venue          string `json:"venue" binding:"required"`
	AttendanceType string `json:"attendanceType" binding:"omitempty,oneof=in_only both"`
	Description    string `json:"desc"`
}
