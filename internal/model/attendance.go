package model

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceAction string

const (
	ActionIn  AttendanceAction = "IN"
	ActionOut AttendanceAction = "OUT"
)

func (a AttendanceAction) Valid() bool {
	return a == ActionIn || a == ActionOut
}

// AttendanceRecord is created exactly once per valid submission and never
// mutated afterwards. The timestamp is assigned by the store at write time,
// not taken from the submitter.
type AttendanceRecord struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	EventID   string           `db:"event_id" json:"eventId"`
	StudentID string           `db:"student_id" json:"studentId"`
	Action    AttendanceAction `db:"action" json:"action"`
	Timestamp time.Time        `db:"timestamp" json:"ts"`
}

// AttendanceSheetRow is the per-student pivot of an event's records: one row
// with the IN and OUT timestamps side by side. Read-side only, never stored.
type AttendanceSheetRow struct {
	StudentID string     `json:"studentId"`
	Name      string     `json:"name"`
	Program   string     `json:"program"`
	Year      string     `json:"year"`
	TimeIn    *time.Time `json:"in,omitempty"`
	TimeOut   *time.Time `json:"out,omitempty"`
}

// AttendanceStats backs the dashboard counters.
type AttendanceStats struct {
	TotalStudents   int          `json:"totalStudents"`
	UpcomingEvents  int          `json:"upcomingEvents"`
	TodayAttendance int          `json:"todayAttendance"`
	DailyCounts     []DailyCount `json:"chartData"`
}

type DailyCount struct {
	Date  string `db:"date" json:"date"`
	Count int    `db:"count" json:"count"`
}

type SubmitAttendanceRequest struct {
	EventID string `json:"eventId" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Action  string `json:"action" binding:"required,oneof=IN OUT"`
}
