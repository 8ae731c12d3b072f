package model

import (
	"time"
)

// Student is roster input to dispatch and submission validation. The
// registration screens own its lifecycle.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Program   string    `db:"program" json:"program"`
	Year      string    `db:"year" json:"year"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateStudentRequest struct {
	ID      string `json:"id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Program string `json:"program" binding:"required"`
	Year    string `json:"year" binding:"required"`
}
