package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhcsc/attend-api/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		auth bool
	}{
		{"auth code", errors.New("535 5.7.8 Username and Password not accepted"), true},
		{"auth word", errors.New("smtp: authentication failed"), true},
		{"oauth grant", errors.New("invalid_grant: token revoked"), true},
		{"access denied", errors.New("access denied for relay"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), false},
		{"greylisting", errors.New("451 4.7.1 try again later"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classify(tt.err)
			assert.Equal(t, tt.auth, IsAuthError(classified))
			if !tt.auth {
				var transient *TransientError
				assert.ErrorAs(t, classified, &transient)
			}
		})
	}
}

func TestSendRejectsEmptyToken(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@attend.test"})

	err := m.Send(context.Background(), Message{To: "a@x.com"}, "")
	assert.ErrorIs(t, err, model.ErrAuthExpired)
}

func TestSendHonorsCancelledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@attend.test"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Send(ctx, Message{To: "a@x.com"}, "token")
	assert.ErrorIs(t, err, context.Canceled)
}
