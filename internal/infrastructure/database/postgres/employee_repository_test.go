package postgres

import (
	"agv-finance/internal/domain/employee"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var employeeRowColumns = []string{"id", "auth0_user_id", "name", "email", "role", "phone", "is_active", "created_at", "last_login"}

func setupEmployeeRepo(t *testing.T) (context.Context, *EmployeeRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewEmployeeRepository(mockPool, logger), mockPool
}

func TestEmployeeRepository_UpsertKeepsStoredRole(t *testing.T) {
	ctx, repo, mockPool := setupEmployeeRepo(t)
	defer mockPool.Close()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	e := employee.NewEmployee(employee.Identity{Subject: "auth0|abc", Name: "Meera", Email: "meera@agv.example"}, now)
	storedID := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (auth0_user_id) DO UPDATE SET")).
		WithArgs(e.ID, e.Subject, e.Name, e.Email, e.Role, e.Phone, e.IsActive, e.CreatedAt, e.LastLogin).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(storedID, e.Subject, e.Name, e.Email, employee.RoleManager, "", true, now.AddDate(0, -2, 0), &now))

	saved, err := repo.Upsert(ctx, e)

	require.NoError(t, err)
	assert.Equal(t, storedID, saved.ID)
	assert.Equal(t, employee.RoleManager, saved.Role)
	require.NotNil(t, saved.LastLogin)
	assert.Equal(t, now, *saved.LastLogin)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestEmployeeRepository_FindBySubject(t *testing.T) {
	ctx, repo, mockPool := setupEmployeeRepo(t)
	defer mockPool.Close()
	id := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE auth0_user_id = $1")).
		WithArgs("auth0|abc").
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(id, "auth0|abc", "Meera", "meera@agv.example", employee.RoleAdmin, "9876543210", true, time.Now(), nil))

	e, err := repo.FindBySubject(ctx, "auth0|abc")

	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.Nil(t, e.LastLogin)
}

func TestEmployeeRepository_FindByIDNotFound(t *testing.T) {
	ctx, repo, mockPool := setupEmployeeRepo(t)
	defer mockPool.Close()
	id := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE id = $1")).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(ctx, id)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
