// Package mailer defines the messaging capability consumed by the dispatch
// service. The wire protocol behind Send belongs to the implementation; the
// core only distinguishes auth-class failures from transient ones.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhcsc/attend-api/internal/model"
)

// Message is a plain From/To/Subject/Body envelope.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	// Send delivers one message using the given bearer credential. An
	// expired or denied credential is reported by wrapping
	// model.ErrAuthExpired; anything else is treated as transient.
	Send(ctx context.Context, msg Message, token string) error
}

// TransientError wraps a provider-side temporary failure for one recipient.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient send failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an authentication-class failure that
// should abort a batch.
func IsAuthError(err error) bool {
	return errors.Is(err, model.ErrAuthExpired)
}
