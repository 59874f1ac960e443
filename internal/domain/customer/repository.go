package customer

import (
	"agv-finance/internal/pkg/pagination"
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("customer not found")

	ErrDuplicateMobile = errors.New("customer with this mobile number already exists")

	ErrCannotDeactivateOpenLoan = errors.New("cannot deactivate customer with an active or overdue loan")

	ErrInactive = errors.New("customer is not active")
)

type ListFilter struct {
	Query  string
	Status Status
	pagination.Params
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error

	Update(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID uuid.UUID) (*Customer, error)

	FindByMobile(ctx context.Context, mobile string) (*Customer, error)

	List(ctx context.Context, filter ListFilter) ([]*Customer, int, error)

	CountOpenLoans(ctx context.Context, customerID uuid.UUID) (int, error)
}
