package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhcsc/attend-api/internal/mailer"
	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/service/credential"
	"github.com/jhcsc/attend-api/pkg/metrics"
)

// scriptedMailer fails recipients listed in errs and records delivery order.
type scriptedMailer struct {
	errs   map[string]error
	sent   []string
	onSend func(to string)
}

func (m *scriptedMailer) Send(_ context.Context, msg mailer.Message, _ string) error {
	if m.onSend != nil {
		m.onSend(msg.To)
	}
	if err, ok := m.errs[msg.To]; ok {
		return err
	}
	m.sent = append(m.sent, msg.To)
	return nil
}

func newTestService(t *testing.T, m mailer.Mailer, cfg Config) *Service {
	t.Helper()
	if cfg.SendInterval == 0 {
		cfg.SendInterval = time.Nanosecond
	}
	if cfg.From == "" {
		cfg.From = "noreply@attend.test"
	}
	broker := credential.NewBroker(
		credential.NewStaticSource("test-token", time.Time{}),
		zerolog.Nop(),
	)
	mtr := metrics.NewMetrics(prometheus.NewRegistry(), "test", "dispatch")
	return NewService(m, broker, cfg, mtr, zerolog.Nop())
}

func recipients(emails ...string) []model.Recipient {
	out := make([]model.Recipient, 0, len(emails))
	for _, e := range emails {
		out = append(out, model.Recipient{Name: "Student", Email: e})
	}
	return out
}

var tmpl = model.MessageTemplate{Subject: "Attendance open", Body: "Submit now."}

func TestSendBulkSkipsInvalidAddresses(t *testing.T) {
	m := &scriptedMailer{}
	svc := newTestService(t, m, Config{})

	result, err := svc.SendBulk(context.Background(), "evt-1", model.ActionIn,
		recipients("a@x.com", "not-an-email", "b@x.com"), tmpl, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.False(t, result.Aborted)
	require.Len(t, result.FailedRecipients, 1)
	assert.Equal(t, "not-an-email", result.FailedRecipients[0].Email)
	assert.Equal(t, model.ReasonInvalidAddress, result.FailedRecipients[0].Reason)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, m.sent, "invalid address must not reach the mailer")
}

func TestSendBulkAbortsOnAuthFailure(t *testing.T) {
	authErr := fmt.Errorf("provider said no: %w", model.ErrAuthExpired)
	m := &scriptedMailer{errs: map[string]error{"b@x.com": authErr}}
	svc := newTestService(t, m, Config{})

	result, err := svc.SendBulk(context.Background(), "evt-1", model.ActionIn,
		recipients("a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"), tmpl, nil)

	require.ErrorIs(t, err, model.ErrAuthExpired)
	assert.True(t, result.Aborted)
	assert.Equal(t, 5, result.Attempted)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 0, result.Failed, "the auth-failed recipient belongs in neither count")
	assert.Equal(t, []string{"a@x.com"}, m.sent, "no send after the abort")
}

func TestSendBulkContinuesOnTransient(t *testing.T) {
	m := &scriptedMailer{errs: map[string]error{
		"b@x.com": &mailer.TransientError{Err: errors.New("greylisted")},
	}}
	svc := newTestService(t, m, Config{})

	result, err := svc.SendBulk(context.Background(), "evt-1", model.ActionOut,
		recipients("a@x.com", "b@x.com", "c@x.com"), tmpl, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.False(t, result.Aborted)
	require.Len(t, result.FailedRecipients, 1)
	assert.Equal(t, model.ReasonTransientError, result.FailedRecipients[0].Reason)
	assert.Equal(t, []string{"a@x.com", "c@x.com"}, m.sent)
}

func TestSendBulkProgressCallback(t *testing.T) {
	m := &scriptedMailer{}
	svc := newTestService(t, m, Config{ProgressEvery: 2})

	var calls [][2]int
	progress := func(sent, total int) { calls = append(calls, [2]int{sent, total}) }

	result, err := svc.SendBulk(context.Background(), "evt-1", model.ActionIn,
		recipients("a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"), tmpl, progress)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Sent)
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}}, calls)
}

func TestSendBulkStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &scriptedMailer{}
	m.onSend = func(string) { cancel() }
	svc := newTestService(t, m, Config{SendInterval: 50 * time.Millisecond})

	result, err := svc.SendBulk(ctx, "evt-1", model.ActionIn,
		recipients("a@x.com", "b@x.com", "c@x.com"), tmpl, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, result.Aborted)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 0, result.Failed)
}

func TestSendTest(t *testing.T) {
	m := &scriptedMailer{}
	svc := newTestService(t, m, Config{})

	require.NoError(t, svc.SendTest(context.Background(), "ops@x.com"))
	assert.Equal(t, []string{"ops@x.com"}, m.sent)

	err := svc.SendTest(context.Background(), "bogus")
	assert.ErrorIs(t, err, model.ErrInvalidAddress)
	assert.Len(t, m.sent, 1)
}
