package employee

import (
	"agv-finance/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EmployeeService interface {
	// SyncFromIdentity records a login: the first one creates the employee
	// with the employee role, later ones refresh name and last login.
	SyncFromIdentity(ctx context.Context, id Identity) (*Employee, error)

	GetEmployee(ctx context.Context, employeeID uuid.UUID) (*Employee, error)
}

var _ EmployeeService = (*employeeService)(nil)

type employeeService struct {
	repo   Repository
	logger *slog.Logger
}

func NewEmployeeService(repo Repository, logger *slog.Logger) EmployeeService {
	if repo == nil {
		panic("employee repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &employeeService{repo: repo, logger: logger.With(slog.String("component", "employeeService"))}
}

func (s *employeeService) SyncFromIdentity(ctx context.Context, id Identity) (*Employee, error) {
	if strings.TrimSpace(id.Subject) == "" {
		return nil, fmt.Errorf("%w: identity has no subject", apperrors.ErrUnauthorized)
	}
	if strings.TrimSpace(id.Email) == "" {
		return nil, fmt.Errorf("%w: identity has no e-mail address", apperrors.ErrUnauthorized)
	}

	emp, err := s.repo.Upsert(ctx, NewEmployee(id, time.Now().UTC()))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to sync employee", slog.String("subject", id.Subject), slog.Any("error", err))
		return nil, fmt.Errorf("failed to sync employee: %w", err)
	}
	if !emp.IsActive {
		s.logger.WarnContext(ctx, "Login refused for inactive employee", slog.String("employeeID", emp.ID.String()))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrForbidden, ErrInactive)
	}
	s.logger.InfoContext(ctx, "Employee signed in", slog.String("employeeID", emp.ID.String()), slog.String("role", string(emp.Role)))
	return emp, nil
}

func (s *employeeService) GetEmployee(ctx context.Context, employeeID uuid.UUID) (*Employee, error) {
	emp, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w (id %s)", apperrors.ErrNotFound, ErrNotFound, employeeID)
		}
		return nil, fmt.Errorf("failed to get employee %s: %w", employeeID, err)
	}
	return emp, nil
}
