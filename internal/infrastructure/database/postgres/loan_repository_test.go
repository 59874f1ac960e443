package postgres

import (
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/pagination"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loanRowColumns = []string{
	"id", "customer_id", "loan_number", "principal_amount", "interest_rate", "tenure_months",
	"loan_type", "disbursed_date", "maturity_date", "status", "collateral_details", "document_urls",
	"created_at", "updated_at", "name", "mobile", "email",
}

func sampleLoan() *loan.Loan {
	l := loan.NewLoan(loan.Terms{
		CustomerID:    uuid.New(),
		Principal:     decimal.NewFromInt(100000),
		InterestRate:  decimal.NewFromInt(12),
		TenureMonths:  12,
		LoanType:      "gold",
		DisbursedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	l.LoanNumber = "LOAN000042"
	l.CustomerName = "Ravi Kumar"
	l.CustomerMobile = "9876543210"
	return l
}

func loanRow(l *loan.Loan) []any {
	return []any{
		l.ID, l.CustomerID, l.LoanNumber, l.Principal, l.InterestRate, l.TenureMonths,
		l.LoanType, l.DisbursedDate, l.MaturityDate, l.Status, l.CollateralDetails, l.DocumentURLs,
		l.CreatedAt, l.UpdatedAt, l.CustomerName, l.CustomerMobile, l.CustomerEmail,
	}
}

func setupLoanRepo(t *testing.T) (context.Context, *LoanRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewLoanRepository(mockPool, logger), mockPool
}

func TestLoanRepository_Create(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	l := sampleLoan()
	l.LoanNumber = ""
	now := time.Now().UTC()

	mockPool.ExpectQuery(regexp.QuoteMeta("'LOAN' || LPAD(nextval('loan_number_seq')::text, 6, '0')")).
		WithArgs(l.ID, l.CustomerID, l.Principal, l.InterestRate, l.TenureMonths, l.LoanType,
			l.DisbursedDate, l.MaturityDate, l.Status, l.CollateralDetails, l.DocumentURLs).
		WillReturnRows(pgxmock.NewRows([]string{"loan_number", "created_at", "updated_at"}).AddRow("LOAN000007", now, now))

	err := repo.Create(ctx, l)

	require.NoError(t, err)
	assert.Equal(t, "LOAN000007", l.LoanNumber)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestLoanRepository_CreateUnknownCustomer(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	l := sampleLoan()

	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO loans")).
		WithArgs(l.ID, l.CustomerID, l.Principal, l.InterestRate, l.TenureMonths, l.LoanType,
			l.DisbursedDate, l.MaturityDate, l.Status, l.CollateralDetails, l.DocumentURLs).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "loans_customer_id_fkey"})

	err := repo.Create(ctx, l)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLoanRepository_FindByID(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	l := sampleLoan()

	mockPool.ExpectQuery(regexp.QuoteMeta("JOIN customers c ON c.id = l.customer_id WHERE l.id = $1")).
		WithArgs(l.ID).
		WillReturnRows(pgxmock.NewRows(loanRowColumns).AddRow(loanRow(l)...))

	found, err := repo.FindByID(ctx, l.ID)

	require.NoError(t, err)
	assert.Equal(t, l.LoanNumber, found.LoanNumber)
	assert.Equal(t, "Ravi Kumar", found.CustomerName)
	assert.True(t, l.Principal.Equal(found.Principal))
	assert.Equal(t, loan.StatusActive, found.Status)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestLoanRepository_FindByIDNotFound(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	id := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE l.id = $1")).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(ctx, id)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLoanRepository_FindByIDForUpdateLocksRow(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	l := sampleLoan()

	mockPool.ExpectBegin()
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE l.id = $1 FOR UPDATE OF l")).
		WithArgs(l.ID).
		WillReturnRows(pgxmock.NewRows(loanRowColumns).AddRow(loanRow(l)...))
	mockPool.ExpectRollback()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	found, err := repo.FindByIDForUpdate(ctx, tx, l.ID)
	require.NoError(t, err)
	require.NoError(t, repo.RollbackTx(ctx, tx))

	assert.Equal(t, l.ID, found.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestLoanRepository_BeginTxFailure(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := repo.BeginTx(ctx)

	assert.ErrorIs(t, err, apperrors.ErrDatabase)
}

func TestLoanRepository_ListWithFilters(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	l := sampleLoan()
	filter := loan.ListFilter{
		Status:     loan.StatusActive,
		LoanType:   "gold",
		CustomerID: l.CustomerID,
		Params:     pagination.Params{Page: 1, PerPage: 20},
	}

	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM loans l WHERE l.status = $1 AND l.loan_type = $2 AND l.customer_id = $3")).
		WithArgs(loan.StatusActive, "gold", l.CustomerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mockPool.ExpectQuery(regexp.QuoteMeta("ORDER BY l.created_at DESC LIMIT $4 OFFSET $5")).
		WithArgs(loan.StatusActive, "gold", l.CustomerID, 20, 0).
		WillReturnRows(pgxmock.NewRows(loanRowColumns).AddRow(loanRow(l)...))

	loans, total, err := repo.List(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, loans, 1)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestLoanRepository_Search(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	l := sampleLoan()

	mockPool.ExpectQuery(regexp.QuoteMeta(`WHERE LOWER(l.loan_number) LIKE $1 ESCAPE '\' OR LOWER(c.name) LIKE $1 ESCAPE '\' OR c.mobile LIKE $1 ESCAPE '\'`)).
		WithArgs("%ravi%", 10).
		WillReturnRows(pgxmock.NewRows(loanRowColumns).AddRow(loanRow(l)...))

	loans, err := repo.Search(ctx, "Ravi", 10)

	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, l.LoanNumber, loans[0].LoanNumber)
}

func TestLoanRepository_PaidTotals(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	id := uuid.New()
	last := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE loan_id = $1")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"principal", "interest", "count", "max"}).
			AddRow(decimal.NewFromInt(5000), decimal.NewFromInt(2000), 2, &last))

	totals, err := repo.PaidTotals(ctx, id)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(totals.PrincipalPaid))
	assert.True(t, decimal.NewFromInt(2000).Equal(totals.InterestPaid))
	assert.Equal(t, 2, totals.PaymentCount)
	require.NotNil(t, totals.LastPayment)
	assert.Equal(t, last, *totals.LastPayment)
}

func TestLoanRepository_UpdateStatus(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	id := uuid.New()

	mockPool.ExpectExec(regexp.QuoteMeta(updateStatusQuery)).
		WithArgs(loan.StatusClosed, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectExec(regexp.QuoteMeta(updateStatusQuery)).
		WithArgs(loan.StatusClosed, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, repo.UpdateStatus(ctx, id, loan.StatusClosed))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, id, loan.StatusClosed), apperrors.ErrNotFound)
}

func TestLoanRepository_RefreshStatusesInTx(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	overdueID, activeID := uuid.New(), uuid.New()

	mockPool.ExpectBegin()
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE status = 'active' AND maturity_date < $1")).
		WithArgs(today).
		WillReturnRows(pgxmock.NewRows([]string{"id", "loan_number"}).AddRow(overdueID, "LOAN000001"))
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE status = 'overdue' AND maturity_date >= $1")).
		WithArgs(today).
		WillReturnRows(pgxmock.NewRows([]string{"id", "loan_number"}).AddRow(activeID, "LOAN000002"))
	mockPool.ExpectCommit()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	overdue, err := repo.MarkOverdueInTx(ctx, tx, today)
	require.NoError(t, err)
	reactivated, err := repo.ReactivateInTx(ctx, tx, today)
	require.NoError(t, err)
	require.NoError(t, repo.CommitTx(ctx, tx))

	assert.Equal(t, []loan.StatusChange{{LoanID: overdueID, LoanNumber: "LOAN000001", From: loan.StatusActive, To: loan.StatusOverdue}}, overdue)
	assert.Equal(t, []loan.StatusChange{{LoanID: activeID, LoanNumber: "LOAN000002", From: loan.StatusOverdue, To: loan.StatusActive}}, reactivated)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
