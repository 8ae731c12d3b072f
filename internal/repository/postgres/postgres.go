package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jhcsc/attend-api/internal/repository"
	"github.com/jhcsc/attend-api/pkg/metrics"
)

type eventRepository struct {
	db *sqlx.DB
}

type studentRepository struct {
	db *sqlx.DB
}

type attendanceRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

type operatorRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func NewStudentRepository(db *sqlx.DB) repository.StudentRepository {
	return &studentRepository{db: db}
}

func NewAttendanceRepository(db *sqlx.DB, m *metrics.Metrics) repository.AttendanceRepository {
	return &attendanceRepository{db: db, metrics: m}
}

func NewOperatorRepository(db *sqlx.DB) repository.OperatorRepository {
	return &operatorRepository{db: db}
}
