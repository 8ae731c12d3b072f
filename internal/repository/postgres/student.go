package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhcsc/attend-api/internal/model"
)

func (r *studentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	query := `
		SELECT id, name, email, program, year, created_at
		FROM students
		WHERE id = $1
	`
	var student model.Student
	err := r.db.GetContext(ctx, &student, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	query := `
		SELECT id, name, email, program, year, created_at
		FROM students
		WHERE email = $1
	`
	var student model.Student
	err := r.db.GetContext(ctx, &student, query, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student by email: %w", err)
	}
	return &student, nil
}

func (r *studentRepository) GetAll(ctx context.Context) ([]*model.Student, error) {
	query := `
		SELECT id, name, email, program, year, created_at
		FROM students
		ORDER BY id
	`
	var students []*model.Student
	err := r.db.SelectContext(ctx, &students, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (r *studentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (id, name, email, program, year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	student.Email = strings.ToLower(student.Email)
	student.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.Name,
		student.Email,
		student.Program,
		student.Year,
		student.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (r *studentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}
