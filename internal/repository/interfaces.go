package repository

import (
	"context"
	"time"

	"github.com/jhcsc/attend-api/internal/model"
)

// All repository interfaces in one file
type (
	// EventRepository is the external collaborator owning event rows. The
	// attendance core only reads from it.
	EventRepository interface {
		GetByID(ctx context.Context, id string) (*model.Event, error)
		List(ctx context.Context) ([]*model.Event, error)
		Create(ctx context.Context, event *model.Event) error
		CountBetween(ctx context.Context, from, to time.Time) (int, error)
	}

	// StudentRepository owns the roster.
	StudentRepository interface {
		GetByID(ctx context.Context, id string) (*model.Student, error)
		GetByEmail(ctx context.Context, email string) (*model.Student, error)
		GetAll(ctx context.Context) ([]*model.Student, error)
		Create(ctx context.Context, student *model.Student) error
		Count(ctx context.Context) (int, error)
	}

	// AttendanceRepository is the ledger backing the dedup store. Insert must
	// enforce uniqueness of (event_id, student_id, action) atomically and
	// return model.ErrDuplicateRecord on violation; the record timestamp is
	// assigned here, at write time.
	AttendanceRepository interface {
		Insert(ctx context.Context, record *model.AttendanceRecord) error
		QueryByEvent(ctx context.Context, eventID string) ([]*model.AttendanceRecord, error)
		CountBetween(ctx context.Context, from, to time.Time) (int, error)
		// CountDaily buckets record counts by calendar day in [from, to).
		// Days with no records are omitted.
		CountDaily(ctx context.Context, from, to time.Time) ([]model.DailyCount, error)
	}

	// OperatorRepository stores administrative users.
	OperatorRepository interface {
		Create(ctx context.Context, operator *model.Operator) error
		GetByEmail(ctx context.Context, email string) (*model.Operator, error)
	}
)
