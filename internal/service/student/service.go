// Package student manages the roster dispatch batches are built from.
package student

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/repository"
)

type Service struct {
	students repository.StudentRepository
	logger   zerolog.Logger
}

func NewService(students repository.StudentRepository, logger zerolog.Logger) *Service {
	return &Service{students: students, logger: logger}
}

func (s *Service) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	if existing, _ := s.students.GetByEmail(ctx, req.Email); existing != nil {
		return nil, fmt.Errorf("create student: email already registered")
	}
	student := &model.Student{
		ID:      req.ID,
		Name:    req.Name,
		Email:   req.Email,
		Program: req.Program,
		Year:    req.Year,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	s.logger.Info().Str("student_id", student.ID).Msg("student registered")
	return student, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Student, error) {
	return s.students.GetAll(ctx)
}
