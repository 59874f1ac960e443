package loan

import (
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/pagination"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("loan not found")

	ErrSettled = fmt.Errorf("%w: payments are not accepted on completed or closed loans", apperrors.ErrLoanSettled)

	ErrNonPositiveAmount = fmt.Errorf("%w: payment amount must be greater than zero", apperrors.ErrInvalidPaymentAmount)

	ErrNotCompleted = errors.New("only completed loans can be closed")
)

type ExceedsDueError struct {
	Amount   decimal.Decimal
	TotalDue decimal.Decimal
}

func (e *ExceedsDueError) Error() string {
	return fmt.Sprintf("payment amount ₹%s exceeds total due ₹%s", e.Amount.StringFixed(2), e.TotalDue.StringFixed(2))
}

func (e *ExceedsDueError) Unwrap() error {
	return apperrors.ErrInvalidPaymentAmount
}

type ListFilter struct {
	Status     Status
	LoanType   string
	CustomerID uuid.UUID
	pagination.Params
}

type StatusChange struct {
	LoanID     uuid.UUID
	LoanNumber string
	From       Status
	To         Status
}

type Repository interface {
	// Create inserts the loan and fills in its generated loan number.
	Create(ctx context.Context, loan *Loan) error

	FindByID(ctx context.Context, loanID uuid.UUID) (*Loan, error)

	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (*Loan, error)

	List(ctx context.Context, filter ListFilter) ([]*Loan, int, error)

	Search(ctx context.Context, query string, limit int) ([]*Loan, error)

	PaidTotals(ctx context.Context, loanID uuid.UUID) (Totals, error)

	PaidTotalsInTx(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (Totals, error)

	UpdateStatus(ctx context.Context, loanID uuid.UUID, status Status) error

	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, loanID uuid.UUID, status Status) error

	MarkOverdueInTx(ctx context.Context, tx pgx.Tx, today time.Time) ([]StatusChange, error)

	ReactivateInTx(ctx context.Context, tx pgx.Tx, today time.Time) ([]StatusChange, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
