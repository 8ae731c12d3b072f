package model

import (
	"time"
)

// WindowState is derived from (event, now) on every query and never cached
// beyond a single evaluation.
type WindowState string

const (
	WindowOpen        WindowState = "OPEN"
	WindowClosingSoon WindowState = "CLOSING_SOON"
	WindowUrgent      WindowState = "URGENT"
	WindowClosed      WindowState = "CLOSED"
	WindowUnbounded   WindowState = "UNBOUNDED"
)

// Accepting reports whether submissions are still allowed in this state.
func (s WindowState) Accepting() bool {
	return s != WindowClosed
}

type FailureReason string

const (
	ReasonInvalidAddress FailureReason = "invalid_address"
	ReasonTransientError FailureReason = "transient_error"
)

// Recipient is a roster snapshot entry for one dispatch batch.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MessageTemplate is the subject and body broadcast to every roster member
// of a batch.
type MessageTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type FailedRecipient struct {
	Email  string        `json:"email"`
	Reason FailureReason `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

// BatchResult summarizes one bulk dispatch invocation. A caller may re-invoke
// dispatch with the failed subset to retry.
type BatchResult struct {
	EventID          string            `json:"eventId"`
	Action           AttendanceAction  `json:"action"`
	Attempted        int               `json:"attempted"`
	Sent             int               `json:"sent"`
	Failed           int               `json:"failed"`
	FailedRecipients []FailedRecipient `json:"failedRecipients,omitempty"`
	Aborted          bool              `json:"aborted"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
}

// AttendanceEvent is published to the message broker after a successful
// submission.
type AttendanceEvent struct {
	EventID   string           `json:"event_id"`
	StudentID string           `json:"student_id"`
	Action    AttendanceAction `json:"action"`
	Timestamp time.Time        `json:"timestamp"`
}
