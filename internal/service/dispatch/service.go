// Package dispatch sends batched notification email to event rosters. Sends
// are paced by a rate limiter, failures are partitioned into invalid-address
// and transient, and an auth-class failure aborts the whole batch.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jhcsc/attend-api/internal/mailer"
	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/service/credential"
	"github.com/jhcsc/attend-api/pkg/metrics"
)

const (
	defaultSendInterval  = 500 * time.Millisecond
	defaultProgressEvery = 10
)

type Config struct {
	// SendInterval is the minimum spacing between consecutive sends.
	SendInterval time.Duration
	// ProgressEvery fires the progress callback after this many successes.
	ProgressEvery int
	// From is the sender address on every outgoing message.
	From string
}

// ProgressFunc is invoked periodically with the running success count and the
// batch size. It runs on the dispatch goroutine; keep it cheap.
type ProgressFunc func(sent, total int)

type Service struct {
	mailer  mailer.Mailer
	broker  *credential.Broker
	cfg     Config
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(m mailer.Mailer, broker *credential.Broker, cfg Config, mtr *metrics.Metrics, logger zerolog.Logger) *Service {
	if cfg.SendInterval <= 0 {
		cfg.SendInterval = defaultSendInterval
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = defaultProgressEvery
	}
	return &Service{
		mailer:  m,
		broker:  broker,
		cfg:     cfg,
		metrics: mtr,
		logger:  logger,
	}
}

// SendBulk delivers the template to every recipient in order. Invalid
// addresses are recorded as failures without a network attempt, transient
// provider failures are recorded and skipped, and an auth-class failure
// aborts the batch immediately. The recipient whose send hit the auth
// failure is counted in neither sent nor failed; a retry of the batch
// re-attempts it.
//
// The returned BatchResult is valid even when an error is returned: it
// reflects every recipient processed before the abort or cancellation.
func (s *Service) SendBulk(ctx context.Context, eventID string, action model.AttendanceAction, recipients []model.Recipient, tmpl model.MessageTemplate, progress ProgressFunc) (*model.BatchResult, error) {
	result := &model.BatchResult{
		EventID:   eventID,
		Action:    action,
		Attempted: len(recipients),
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		result.FinishedAt = time.Now().UTC()
		s.metrics.DispatchBatchDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}()

	limiter := rate.NewLimiter(rate.Every(s.cfg.SendInterval), 1)

	for _, r := range recipients {
		if !validAddress(r.Email) {
			s.recordFailure(result, r.Email, model.ReasonInvalidAddress, "address must contain '@'")
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			result.Aborted = true
			return result, fmt.Errorf("dispatch cancelled: %w", err)
		}

		token, err := s.broker.EnsureToken(ctx)
		if err != nil {
			result.Aborted = true
			s.metrics.DispatchAborts.Inc()
			s.logger.Error().Err(err).Str("event_id", eventID).Msg("dispatch aborted: no credential")
			return result, fmt.Errorf("dispatch aborted: %w", err)
		}

		msg := mailer.Message{
			From:    s.cfg.From,
			To:      r.Email,
			Subject: tmpl.Subject,
			Body:    tmpl.Body,
		}

		switch err := s.mailer.Send(ctx, msg, token); {
		case err == nil:
			result.Sent++
			s.metrics.NotificationsSent.Inc()
			if progress != nil && result.Sent%s.cfg.ProgressEvery == 0 {
				progress(result.Sent, len(recipients))
			}
		case mailer.IsAuthError(err):
			s.broker.Invalidate()
			result.Aborted = true
			s.metrics.DispatchAborts.Inc()
			s.logger.Error().Err(err).
				Str("event_id", eventID).
				Int("sent", result.Sent).
				Msg("dispatch aborted: credential rejected")
			return result, fmt.Errorf("dispatch aborted: %w", err)
		default:
			s.recordFailure(result, r.Email, model.ReasonTransientError, err.Error())
			s.logger.Warn().Err(err).Str("to", r.Email).Msg("send failed, continuing batch")
		}
	}

	s.logger.Info().
		Str("event_id", eventID).
		Int("attempted", result.Attempted).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("dispatch batch finished")
	return result, nil
}

// SendTest delivers a single message to the given address, bypassing the
// batch machinery. Used by the operator-facing connectivity check.
func (s *Service) SendTest(ctx context.Context, to string) error {
	if !validAddress(to) {
		return fmt.Errorf("test send to %q: %w", to, model.ErrInvalidAddress)
	}
	token, err := s.broker.EnsureToken(ctx)
	if err != nil {
		return fmt.Errorf("test send: %w", err)
	}
	msg := mailer.Message{
		From:    s.cfg.From,
		To:      to,
		Subject: "Delivery test",
		Body:    "This is a connectivity test message. No action is required.",
	}
	if err := s.mailer.Send(ctx, msg, token); err != nil {
		return fmt.Errorf("test send: %w", err)
	}
	return nil
}

func (s *Service) recordFailure(result *model.BatchResult, email string, reason model.FailureReason, detail string) {
	result.Failed++
	result.FailedRecipients = append(result.FailedRecipients, model.FailedRecipient{
		Email:  email,
		Reason: reason,
		Detail: detail,
	})
	s.metrics.NotificationsFailed.WithLabelValues(string(reason)).Inc()
}

func validAddress(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
