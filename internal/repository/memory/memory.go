// Package memory provides in-process implementations of the repository
// interfaces. The attendance repository carries the same uniqueness guarantee
// as the Postgres constraint, so the dedup semantics can be exercised without
// a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/repository"
)

type EventRepository struct {
	mu     sync.RWMutex
	events map[string]*model.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string]*model.Event)}
}

var _ repository.EventRepository = (*EventRepository)(nil)

func (r *EventRepository) GetByID(_ context.Context, id string) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	cp := *event
	return &cp, nil
}

func (r *EventRepository) List(_ context.Context) ([]*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Event, 0, len(r.events))
	for _, event := range r.events {
		cp := *event
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *EventRepository) Create(_ context.Context, event *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *EventRepository) CountBetween(_ context.Context, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, event := range r.events {
		if !event.Date.Before(from) && !event.Date.After(to) {
			count++
		}
	}
	return count, nil
}

type StudentRepository struct {
	mu       sync.RWMutex
	students map[string]*model.Student
	byEmail  map[string]string
}

func NewStudentRepository() *StudentRepository {
	return &StudentRepository{
		students: make(map[string]*model.Student),
		byEmail:  make(map[string]string),
	}
}

var _ repository.StudentRepository = (*StudentRepository)(nil)

func (r *StudentRepository) GetByID(_ context.Context, id string) (*model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[id]
	if !ok {
		return nil, model.ErrStudentNotFound
	}
	cp := *student
	return &cp, nil
}

func (r *StudentRepository) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrStudentNotFound
	}
	cp := *r.students[id]
	return &cp, nil
}

func (r *StudentRepository) GetAll(_ context.Context) ([]*model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Student, 0, len(r.students))
	for _, student := range r.students {
		cp := *student
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *StudentRepository) Create(_ context.Context, student *model.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	student.Email = strings.ToLower(student.Email)
	student.CreatedAt = time.Now()
	cp := *student
	r.students[student.ID] = &cp
	r.byEmail[cp.Email] = cp.ID
	return nil
}

func (r *StudentRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.students), nil
}

// AttendanceRepository enforces one record per (event, student, action) via
// an atomic per-key check-and-set, the in-process equivalent of the storage
// constraint. Writes for different keys never block each other.
type AttendanceRepository struct {
	byKey   sync.Map // recordKey -> *model.AttendanceRecord
	mu      sync.Mutex
	byEvent map[string][]*model.AttendanceRecord
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		byEvent: make(map[string][]*model.AttendanceRecord),
	}
}

var _ repository.AttendanceRepository = (*AttendanceRepository)(nil)

func recordKey(eventID, studentID string, action model.AttendanceAction) string {
	return eventID + "\x00" + studentID + "\x00" + string(action)
}

func (r *AttendanceRepository) Insert(_ context.Context, record *model.AttendanceRecord) error {
	key := recordKey(record.EventID, record.StudentID, record.Action)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Timestamp = time.Now().UTC()

	cp := *record
	if _, loaded := r.byKey.LoadOrStore(key, &cp); loaded {
		return model.ErrDuplicateRecord
	}

	r.mu.Lock()
	r.byEvent[record.EventID] = append(r.byEvent[record.EventID], &cp)
	r.mu.Unlock()
	return nil
}

func (r *AttendanceRepository) QueryByEvent(_ context.Context, eventID string) ([]*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := r.byEvent[eventID]
	out := make([]*model.AttendanceRecord, len(records))
	for i, record := range records {
		cp := *record
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *AttendanceRepository) CountBetween(_ context.Context, from, to time.Time) (int, error) {
	count := 0
	r.byKey.Range(func(_, v interface{}) bool {
		record := v.(*model.AttendanceRecord)
		if !record.Timestamp.Before(from) && !record.Timestamp.After(to) {
			count++
		}
		return true
	})
	return count, nil
}

type OperatorRepository struct {
	mu        sync.RWMutex
	operators map[string]*model.Operator
}

func NewOperatorRepository() *OperatorRepository {
	return &OperatorRepository{operators: make(map[string]*model.Operator)}
}

var _ repository.OperatorRepository = (*OperatorRepository)(nil)

func (r *OperatorRepository) Create(_ context.Context, operator *model.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if operator.ID == uuid.Nil {
		operator.ID = uuid.New()
	}
	operator.Email = strings.ToLower(operator.Email)
	operator.CreatedAt = time.Now()
	cp := *operator
	r.operators[cp.Email] = &cp
	return nil
}

func (r *OperatorRepository) GetByEmail(_ context.Context, email string) (*model.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	operator, ok := r.operators[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrOperatorNotFound
	}
	cp := *operator
	return &cp, nil
}

func (r *AttendanceRepository) CountDaily(_ context.Context, from, to time.Time) ([]model.DailyCount, error) {
	buckets := make(map[string]int)
	r.byKey.Range(func(_, v interface{}) bool {
		record := v.(*model.AttendanceRecord)
		if record.Timestamp.Before(from) || !record.Timestamp.Before(to) {
			return true
		}
		buckets[record.Timestamp.UTC().Format("2006-01-02")]++
		return true
	})
	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)
	out := make([]model.DailyCount, 0, len(days))
	for _, day := range days {
		out = append(out, model.DailyCount{Date: day, Count: buckets[day]})
	}
	return out, nil
}
