package postgres

import (
	"agv-finance/internal/domain/employee"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, auth0_user_id, name, email, role, COALESCE(phone, ''), is_active, created_at, last_login`

type EmployeeRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ employee.Repository = (*EmployeeRepository)(nil)

func NewEmployeeRepository(db DBPool, logger *slog.Logger) *EmployeeRepository {
	if db == nil {
		panic("DBPool cannot be nil for EmployeeRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &EmployeeRepository{db: db, logger: logger.With("component", "EmployeeRepository")}
}

func scanEmployee(row rowScanner) (*employee.Employee, error) {
	var e employee.Employee
	if err := row.Scan(&e.ID, &e.Subject, &e.Name, &e.Email, &e.Role, &e.Phone, &e.IsActive, &e.CreatedAt, &e.LastLogin); err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert keys on the identity provider subject. Role, phone and the active
// flag of an existing employee are left untouched.
func (r *EmployeeRepository) Upsert(ctx context.Context, e *employee.Employee) (saved *employee.Employee, err error) {
	if e == nil {
		return nil, fmt.Errorf("%w: employee cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer observe("employee_upsert", time.Now(), &err)

	query := `
        INSERT INTO employees (id, auth0_user_id, name, email, role, phone, is_active, created_at, last_login)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
        ON CONFLICT (auth0_user_id) DO UPDATE SET
            name = EXCLUDED.name,
            email = EXCLUDED.email,
            last_login = EXCLUDED.last_login
        RETURNING ` + employeeColumns

	saved, err = scanEmployee(r.db.QueryRow(ctx, query,
		e.ID, e.Subject, e.Name, e.Email, e.Role, e.Phone, e.IsActive, e.CreatedAt, e.LastLogin,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert employee", "error", err, "subject", e.Subject)
		return nil, translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Employee synced", "employee_id", saved.ID)
	return saved, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, employeeID uuid.UUID) (*employee.Employee, error) {
	return r.findOne(ctx, "employee_find_by_id", `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, employeeID)
}

func (r *EmployeeRepository) FindBySubject(ctx context.Context, subject string) (*employee.Employee, error) {
	return r.findOne(ctx, "employee_find_by_subject", `SELECT `+employeeColumns+` FROM employees WHERE auth0_user_id = $1`, subject)
}

func (r *EmployeeRepository) findOne(ctx context.Context, name, query string, arg any) (e *employee.Employee, err error) {
	defer observe(name, time.Now(), &err)

	e, err = scanEmployee(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan employee", "error", err)
		return nil, fmt.Errorf("%w: failed to get employee: %w", apperrors.ErrDatabase, err)
	}
	return e, nil
}
