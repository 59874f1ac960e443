package payment

import (
	"agv-finance/internal/pkg/pagination"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("payment not found")

type ListFilter struct {
	Query  string
	Method string
	Date   *time.Time
	LoanID uuid.UUID
	pagination.Params
}

type Repository interface {
	// CreateInTx inserts the payment and fills in its payment and receipt numbers.
	CreateInTx(ctx context.Context, tx pgx.Tx, p *Payment) error

	FindByID(ctx context.Context, paymentID uuid.UUID) (*Payment, error)

	List(ctx context.Context, filter ListFilter) ([]*Payment, int, error)

	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*Payment, error)
}
