// Package session coordinates one attendance cycle per (event, action):
// opening the window kicks off the notification batch in the background,
// submissions flow in while it runs, and the first observation of a closed
// window latches the session shut.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/repository"
	"github.com/jhcsc/attend-api/internal/service/dispatch"
	"github.com/jhcsc/attend-api/internal/service/window"
	"github.com/jhcsc/attend-api/pkg/messaging"
)

// State is the session lifecycle. CLOSED is terminal.
type State string

const (
	StateIdle        State = "IDLE"
	StateDispatching State = "DISPATCHING"
	StateAccepting   State = "ACCEPTING_SUBMISSIONS"
	StateClosed      State = "CLOSED"
)

// AttendanceChannel is the broker channel carrying accepted submissions.
const AttendanceChannel = "attendance.recorded"

var ErrAlreadyOpen = errors.New("session already open for event and action")

// Dispatcher runs one notification batch. Satisfied by dispatch.Service.
type Dispatcher interface {
	SendBulk(ctx context.Context, eventID string, action model.AttendanceAction, recipients []model.Recipient, tmpl model.MessageTemplate, progress dispatch.ProgressFunc) (*model.BatchResult, error)
}

// Recorder writes submissions to the ledger. Satisfied by attendance.Service.
type Recorder interface {
	RecordByEmail(ctx context.Context, eventID, email string, action model.AttendanceAction) (*model.AttendanceRecord, error)
}

// View is a snapshot of one session for callers; the live session stays
// private to the coordinator.
type View struct {
	EventID string                 `json:"eventId"`
	Action  model.AttendanceAction `json:"action"`
	State   State                  `json:"state"`
	Result  *model.BatchResult     `json:"dispatch,omitempty"`
}

type session struct {
	eventID string
	action  model.AttendanceAction
	state   State
	result  *model.BatchResult
	cancel  context.CancelFunc
}

type Service struct {
	events     repository.EventRepository
	students   repository.StudentRepository
	recorder   Recorder
	dispatcher Dispatcher
	broker     messaging.Broker
	logger     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

func NewService(events repository.EventRepository, students repository.StudentRepository, recorder Recorder, dispatcher Dispatcher, broker messaging.Broker, logger zerolog.Logger) *Service {
	return &Service{
		events:     events,
		students:   students,
		recorder:   recorder,
		dispatcher: dispatcher,
		broker:     broker,
		logger:     logger,
		sessions:   make(map[string]*session),
	}
}

func sessionKey(eventID string, action model.AttendanceAction) string {
	return eventID + "\x00" + string(action)
}

// OpenWindow starts a session for (event, action): the roster is snapshotted,
// the notification batch starts in the background, and submissions are
// accepted immediately, while the batch is still running. Opening fails if
// the event's window has already closed or a session is already open.
func (s *Service) OpenWindow(ctx context.Context, eventID string, action model.AttendanceAction, tmpl model.MessageTemplate) (*View, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("open window: invalid action %q", action)
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("open window: %w", err)
	}
	if !window.State(event, time.Now()).Accepting() {
		return nil, fmt.Errorf("open window: %w", model.ErrWindowClosed)
	}

	students, err := s.students.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("open window: %w", err)
	}
	recipients := make([]model.Recipient, 0, len(students))
	for _, st := range students {
		recipients = append(recipients, model.Recipient{Name: st.Name, Email: st.Email})
	}

	key := sessionKey(eventID, action)
	dispatchCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok && existing.state != StateClosed {
		s.mu.Unlock()
		cancel()
		return nil, ErrAlreadyOpen
	}
	sess := &session{eventID: eventID, action: action, state: StateDispatching, cancel: cancel}
	s.sessions[key] = sess
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runDispatch(dispatchCtx, sess, recipients, tmpl)

	s.logger.Info().
		Str("event_id", eventID).
		Str("action", string(action)).
		Int("recipients", len(recipients)).
		Msg("attendance window opened")
	return s.view(sess), nil
}

func (s *Service) runDispatch(ctx context.Context, sess *session, recipients []model.Recipient, tmpl model.MessageTemplate) {
	defer s.wg.Done()

	progress := func(sent, total int) {
		s.logger.Info().
			Str("event_id", sess.eventID).
			Int("sent", sent).
			Int("total", total).
			Msg("dispatch progress")
	}

	result, err := s.dispatcher.SendBulk(ctx, sess.eventID, sess.action, recipients, tmpl, progress)
	if err != nil {
		// Submissions stay open: a failed batch means some students were not
		// notified, not that attendance stops.
		s.logger.Warn().Err(err).Str("event_id", sess.eventID).Msg("dispatch batch did not complete")
	}

	s.mu.Lock()
	sess.result = result
	if sess.state == StateDispatching {
		sess.state = StateAccepting
	}
	s.mu.Unlock()
}

// Submit records one student's attendance through the session. The window is
// re-evaluated on every call: the first closed observation latches the
// session CLOSED, cancels any in-flight dispatch, and rejects this and all
// later submissions before the ledger is touched.
func (s *Service) Submit(ctx context.Context, eventID, email string, action model.AttendanceAction) (*model.AttendanceRecord, error) {
	key := sessionKey(eventID, action)
	s.mu.Lock()
	sess, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		return nil, model.ErrSessionNotFound
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if !window.State(event, time.Now()).Accepting() {
		s.close(sess)
		return nil, model.ErrWindowClosed
	}

	s.mu.Lock()
	closed := sess.state == StateClosed
	s.mu.Unlock()
	if closed {
		return nil, model.ErrWindowClosed
	}

	record, err := s.recorder.RecordByEmail(ctx, eventID, email, action)
	if err != nil {
		return nil, err
	}

	if s.broker != nil {
		evt := model.AttendanceEvent{
			EventID:   record.EventID,
			StudentID: record.StudentID,
			Action:    record.Action,
			Timestamp: record.Timestamp,
		}
		if err := s.broker.Publish(ctx, AttendanceChannel, evt); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish attendance event")
		}
	}
	return record, nil
}

// WindowState evaluates the event's window right now. Usable with or without
// an open session.
func (s *Service) WindowState(ctx context.Context, eventID string) (model.WindowState, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("window state: %w", err)
	}
	return window.State(event, time.Now()), nil
}

// Status returns a snapshot of the session, including the batch result once
// dispatch has finished.
func (s *Service) Status(eventID string, action model.AttendanceAction) (*View, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey(eventID, action)]
	s.mu.Unlock()
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s.view(sess), nil
}

// Cancel stops an in-flight dispatch batch. The session itself stays open
// for submissions.
func (s *Service) Cancel(eventID string, action model.AttendanceAction) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey(eventID, action)]
	s.mu.Unlock()
	if !ok {
		return model.ErrSessionNotFound
	}
	sess.cancel()
	return nil
}

// Close latches the session shut. Used by operators to end a cycle early;
// the window boundary closes sessions on its own otherwise.
func (s *Service) Close(eventID string, action model.AttendanceAction) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey(eventID, action)]
	s.mu.Unlock()
	if !ok {
		return model.ErrSessionNotFound
	}
	s.close(sess)
	return nil
}

// Wait blocks until all background dispatch goroutines finish. Called during
// shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) close(sess *session) {
	s.mu.Lock()
	already := sess.state == StateClosed
	sess.state = StateClosed
	s.mu.Unlock()
	if !already {
		sess.cancel()
		s.logger.Info().
			Str("event_id", sess.eventID).
			Str("action", string(sess.action)).
			Msg("attendance window closed")
	}
}

func (s *Service) view(sess *session) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &View{
		EventID: sess.eventID,
		Action:  sess.action,
		State:   sess.state,
	}
	if sess.result != nil {
		cp := *sess.result
		v.Result = &cp
	}
	return v
}
