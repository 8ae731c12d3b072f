package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhcsc/attend-api/internal/model"
)

func (r *operatorRepository) Create(ctx context.Context, operator *model.Operator) error {
	query := `
		INSERT INTO operators (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	operator.ID = uuid.New()
	operator.Email = strings.ToLower(operator.Email)
	operator.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		operator.ID,
		operator.Name,
		operator.Email,
		operator.PasswordHash,
		operator.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*model.Operator, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM operators
		WHERE email = $1
	`
	var operator model.Operator
	err := r.db.GetContext(ctx, &operator, query, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return &operator, nil
}
