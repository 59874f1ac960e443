package employee

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("employee not found")

	ErrInactive = errors.New("employee account is deactivated")
)

type Repository interface {
	// Upsert inserts a new employee or refreshes name, e-mail and last login
	// of the one with the same subject, returning the stored row.
	Upsert(ctx context.Context, e *Employee) (*Employee, error)

	FindByID(ctx context.Context, employeeID uuid.UUID) (*Employee, error)

	FindBySubject(ctx context.Context, subject string) (*Employee, error)
}
