package postgres

import (
	"agv-finance/internal/domain/report"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march2024 = report.Period{
	From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	To:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
}

func setupReportRepo(t *testing.T) (context.Context, *ReportRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewReportRepository(mockPool, logger), mockPool
}

func TestReportRepository_LoanTotals(t *testing.T) {
	ctx, repo, mockPool := setupReportRepo(t)
	defer mockPool.Close()
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(regexp.QuoteMeta("(l.status = 'overdue' OR (l.status = 'active' AND l.maturity_date < $1))")).
		WithArgs(today).
		WillReturnRows(pgxmock.NewRows([]string{"active", "overdue", "principal"}).AddRow(12, 3, decimal.NewFromInt(950000)))

	totals, err := repo.LoanTotals(ctx, today)

	require.NoError(t, err)
	assert.Equal(t, 12, totals.ActiveCount)
	assert.Equal(t, 3, totals.OverdueCount)
	assert.True(t, decimal.NewFromInt(950000).Equal(totals.ActivePrincipal))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestReportRepository_PeriodActivity(t *testing.T) {
	ctx, repo, mockPool := setupReportRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE l.disbursed_date >= $1 AND l.disbursed_date < $2")).
		WithArgs(march2024.From, march2024.To).
		WillReturnRows(pgxmock.NewRows([]string{"new", "borrowers", "loans", "disbursed", "rate", "principal", "interest"}).
			AddRow(4, 3, 5, decimal.NewFromInt(400000), decimal.RequireFromString("11.5"), decimal.NewFromInt(20000), decimal.NewFromInt(8000)))

	a, err := repo.PeriodActivity(ctx, march2024)

	require.NoError(t, err)
	assert.Equal(t, 4, a.NewCustomers)
	assert.Equal(t, 3, a.Borrowers)
	assert.Equal(t, 5, a.LoansCount)
	assert.True(t, decimal.NewFromInt(8000).Equal(a.InterestCollected))
}

func TestReportRepository_MonthlyFinancialsFormatsMonth(t *testing.T) {
	ctx, repo, mockPool := setupReportRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM d FULL OUTER JOIN c ON c.m = d.m")).
		WithArgs(march2024.From, march2024.To).
		WillReturnRows(pgxmock.NewRows([]string{"month", "disbursed", "collected", "interest"}).
			AddRow(march2024.From, decimal.NewFromInt(400000), decimal.NewFromInt(20000), decimal.NewFromInt(8000)))

	out, err := repo.MonthlyFinancials(ctx, march2024)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Mar 2024", out[0].Month)
	assert.True(t, decimal.NewFromInt(20000).Equal(out[0].Collected))
}

func TestReportRepository_RecentPayments(t *testing.T) {
	ctx, repo, mockPool := setupReportRepo(t)
	defer mockPool.Close()
	id := uuid.New()
	paid := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(regexp.QuoteMeta("ORDER BY p.created_at DESC LIMIT $1")).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "payment_number", "name", "amount", "payment_method", "payment_date"}).
			AddRow(id, "PAY000003", "Asha Rao", decimal.NewFromInt(1200), "cash", paid))

	items, err := repo.RecentPayments(ctx, 10)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, report.ActivityItem{ID: id, Reference: "PAY000003", Customer: "Asha Rao", Amount: decimal.NewFromInt(1200), Type: "cash", Date: paid}, items[0])
}

func TestReportRepository_CustomerAggregates(t *testing.T) {
	ctx, repo, mockPool := setupReportRepo(t)
	defer mockPool.Close()
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(regexp.QuoteMeta("LEFT JOIN loans l ON l.customer_id = c.id")).
		WithArgs(today, 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "mobile", "status", "loans", "overdue", "amount", "last"}).
			AddRow(uuid.New(), "Ravi Kumar", "9876543210", "active", 2, 1, decimal.NewFromInt(150000), &last).
			AddRow(uuid.New(), "Asha Rao", "9123456780", "active", 0, 0, decimal.Zero, nil))

	rows, err := repo.CustomerAggregates(ctx, today, 100)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].OverdueLoans)
	require.NotNil(t, rows[0].LastLoanDate)
	assert.Nil(t, rows[1].LastLoanDate)
}

func TestReportRepository_QueryError(t *testing.T) {
	ctx, repo, mockPool := setupReportRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers WHERE status = 'active'")).
		WillReturnError(errors.New("statement timeout"))

	_, err := repo.CountActiveCustomers(ctx)

	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.Contains(t, err.Error(), "active customers")
}
