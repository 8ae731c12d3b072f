package model

import (
	"errors"
)

// Sentinel errors for the attendance core. Callers branch with errors.Is so
// "closed", "duplicate" and "not found" reach the end user as distinct
// messages.
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrOperatorNotFound = errors.New("operator not found")

	// ErrDuplicateRecord means the (event, student, action) tuple already has
	// a record. Not a retryable condition.
	ErrDuplicateRecord = errors.New("attendance already recorded")

	// ErrWindowClosed rejects a submission past the event's end boundary.
	ErrWindowClosed = errors.New("attendance window is closed")

	// ErrAuthExpired marks an authentication-class mailer failure. The caller
	// should re-authenticate and resume rather than retry blindly.
	ErrAuthExpired = errors.New("mailer credential expired or denied")

	// ErrNotAuthenticated is returned by the credential broker before a token
	// has been acquired.
	ErrNotAuthenticated = errors.New("credential broker not authenticated")

	ErrInvalidAddress = errors.New("invalid email address")

	// ErrSessionNotFound means no window was opened for the (event, action)
	// pair.
	ErrSessionNotFound = errors.New("no active session for event and action")
)
