package loan

import (
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/event"
	"agv-finance/internal/infrastructure/monitoring"
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/validation"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinSearchLength = 3
	searchLimit     = 10
)

type CreateInput struct {
	CustomerID        uuid.UUID
	Principal         decimal.Decimal
	InterestRate      decimal.Decimal
	TenureMonths      int
	LoanType          string
	DisbursedDate     time.Time
	CollateralDetails map[string]any
}

type ListResult struct {
	Loans   []*Loan
	Total   int
	Page    int
	PerPage int
}

type Summary struct {
	Loan *Loan `json:"loan"`
	Balance
	EMI           decimal.Decimal `json:"emi"`
	MonthsElapsed int             `json:"months_elapsed"`
	PaymentCount  int             `json:"payment_count"`
	Status        Status          `json:"status"`
}

type RefreshResult struct {
	MarkedOverdue int
	Reactivated   int
}

type LoanService interface {
	CreateLoan(ctx context.Context, input CreateInput) (*Loan, error)

	GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)

	ListLoans(ctx context.Context, filter ListFilter) (*ListResult, error)

	SearchLoans(ctx context.Context, query string) ([]*Loan, error)

	GetLoanSummary(ctx context.Context, loanID uuid.UUID) (*Summary, error)

	GetSchedule(ctx context.Context, loanID uuid.UUID) ([]Installment, error)

	CloseLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)

	RefreshStatuses(ctx context.Context, now time.Time) (*RefreshResult, error)
}

var _ LoanService = (*loanServiceImpl)(nil)

type loanServiceImpl struct {
	repo            Repository
	customerService customer.CustomerService
	pub             event.EventPublisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewLoanService(r Repository, cs customer.CustomerService, pub event.EventPublisher, logger *slog.Logger) LoanService {
	if r == nil {
		panic("loan repository cannot be nil")
	}
	if cs == nil {
		panic("customer service cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	if pub == nil {
		pub = event.NewNoopPublisher(logger)
	}
	return &loanServiceImpl{
		repo:            r,
		customerService: cs,
		pub:             pub,
		logger:          logger.With(slog.String("component", "loanService")),
		now:             time.Now,
	}
}

func validateInput(in CreateInput, now time.Time) (CreateInput, error) {
	fields := validation.Fields{}

	if in.CustomerID == uuid.Nil {
		fields["customer_id"] = "Customer is required"
	}
	fields.Check("principal_amount", validation.AmountRange(in.Principal, validation.MinLoanAmount, validation.MaxLoanAmount))
	fields.Check("interest_rate", validation.InterestRateRange(in.InterestRate))
	fields.Check("tenure_months", validation.TenureMonths(in.TenureMonths))

	var err error
	in.LoanType, err = validation.LoanType(in.LoanType)
	fields.Check("loan_type", err)

	if in.DisbursedDate.IsZero() {
		in.DisbursedDate = DateOf(now)
	} else {
		fields.Check("disbursed_date", validation.DateRange(in.DisbursedDate, false, now))
	}
	return in, fields.Err()
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, input CreateInput) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan", slog.String("customerID", input.CustomerID.String()))

	input, err := validateInput(input, s.now())
	if err != nil {
		s.logger.WarnContext(ctx, "Loan validation failed", slog.Any("error", err))
		return nil, err
	}

	cust, err := s.customerService.GetCustomer(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found", slog.Any("error", err))
			return nil, apperrors.NewValidationError("customer_id", "Customer not found")
		}
		s.logger.ErrorContext(ctx, "Failed to get customer details from customer service", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify customer status: %w", err)
	}
	if !cust.IsActive() {
		s.logger.WarnContext(ctx, "Attempted to create loan for inactive customer")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation,
			&apperrors.ValidationError{Field: "customer_id", Message: "Customer is not active", Cause: customer.ErrInactive})
	}

	loan := NewLoan(Terms(input))
	if err := s.repo.Create(ctx, loan); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	loan.CustomerName = cust.Name
	loan.CustomerMobile = cust.Mobile
	monitoring.RecordLoanCreated(loan.LoanType)
	s.logger.InfoContext(ctx, "Loan created successfully",
		slog.String("loanID", loan.ID.String()),
		slog.String("loanNumber", loan.LoanNumber))

	ev := event.LoanCreatedEvent{
		Timestamp:     time.Now(),
		LoanID:        loan.ID,
		LoanNumber:    loan.LoanNumber,
		CustomerID:    loan.CustomerID,
		Principal:     loan.Principal.StringFixed(2),
		InterestRate:  loan.InterestRate.StringFixed(2),
		TenureMonths:  loan.TenureMonths,
		LoanType:      loan.LoanType,
		DisbursedDate: loan.DisbursedDate,
		MaturityDate:  loan.MaturityDate,
	}
	if err := s.pub.PublishLoanCreated(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan created event", slog.Any("error", err))
	}
	return loan, nil
}

func notFound(loanID uuid.UUID) error {
	return fmt.Errorf("%w: %w (id %s)", apperrors.ErrNotFound, ErrNotFound, loanID)
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	loan, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", slog.String("loanID", loanID.String()))
			return nil, notFound(loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", slog.String("loanID", loanID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get loan %s: %w", loanID, err)
	}
	return loan, nil
}

func (s *loanServiceImpl) ListLoans(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.Params = filter.Params.Normalize()
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("status", "Invalid loan status")
	}
	if filter.LoanType != "" {
		lt, err := validation.LoanType(filter.LoanType)
		if err != nil {
			return nil, apperrors.NewValidationError("loan_type", err.Error())
		}
		filter.LoanType = lt
	}

	loans, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return &ListResult{Loans: loans, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

// SearchLoans matches loan number, customer name or mobile. Queries shorter
// than MinSearchLength return no rows.
func (s *loanServiceImpl) SearchLoans(ctx context.Context, query string) ([]*Loan, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchLength {
		return []*Loan{}, nil
	}
	loans, err := s.repo.Search(ctx, query, searchLimit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to search loans", slog.Any("error", err))
		return nil, fmt.Errorf("failed to search loans: %w", err)
	}
	return loans, nil
}

func (s *loanServiceImpl) GetLoanSummary(ctx context.Context, loanID uuid.UUID) (*Summary, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.PaidTotals(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load paid totals", slog.String("loanID", loanID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to load payments of loan %s: %w", loanID, err)
	}
	emi, err := loan.EMI()
	if err != nil {
		return nil, fmt.Errorf("%w: loan %s has invalid terms: %v", apperrors.ErrInternalServer, loanID, err)
	}

	now := s.now()
	bal := loan.Balance(totals, now)
	return &Summary{
		Loan:          loan,
		Balance:       bal,
		EMI:           emi.EMI,
		MonthsElapsed: MonthsElapsed(loan.DisbursedDate, now),
		PaymentCount:  totals.PaymentCount,
		Status:        loan.DeriveStatus(bal.OutstandingPrincipal, now),
	}, nil
}

func (s *loanServiceImpl) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]Installment, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	schedule, err := loan.Schedule()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate schedule", slog.String("loanID", loanID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to generate schedule for loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return schedule, nil
}

func (s *loanServiceImpl) CloseLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	logCtx := s.logger.With(slog.String("loanID", loanID.String()))

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != StatusCompleted {
		logCtx.WarnContext(ctx, "Refusing to close loan", slog.String("status", string(loan.Status)))
		return nil, fmt.Errorf("%w: %w (status %s)", apperrors.ErrConflict, ErrNotCompleted, loan.Status)
	}

	if err := s.repo.UpdateStatus(ctx, loanID, StatusClosed); err != nil {
		logCtx.ErrorContext(ctx, "Failed to close loan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to close loan %s: %w", loanID, err)
	}
	loan.Status = StatusClosed
	loan.UpdatedAt = time.Now().UTC()
	monitoring.RecordLoanStatusChange(string(StatusClosed), 1)
	logCtx.InfoContext(ctx, "Loan closed")

	s.publishStatusChange(ctx, StatusChange{LoanID: loan.ID, LoanNumber: loan.LoanNumber, From: StatusCompleted, To: StatusClosed})
	return loan, nil
}

func (s *loanServiceImpl) publishStatusChange(ctx context.Context, c StatusChange) {
	ev := event.LoanStatusChangedEvent{
		Timestamp:  time.Now(),
		LoanID:     c.LoanID,
		LoanNumber: c.LoanNumber,
		OldStatus:  string(c.From),
		NewStatus:  string(c.To),
	}
	if err := s.pub.PublishLoanStatusChanged(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan status change", slog.String("loanID", c.LoanID.String()), slog.Any("error", err))
	}
}

// RefreshStatuses moves active loans past maturity to overdue and overdue
// loans whose maturity is no longer past back to active, in one transaction.
func (s *loanServiceImpl) RefreshStatuses(ctx context.Context, now time.Time) (result *RefreshResult, err error) {
	today := DateOf(now)
	s.logger.InfoContext(ctx, "Refreshing loan statuses", slog.Time("today", today))

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			s.logger.ErrorContext(ctx, "Rolling back status refresh", slog.Any("error", err))
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	overdue, err := s.repo.MarkOverdueInTx(ctx, tx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to mark overdue loans: %w", err)
	}
	reactivated, err := s.repo.ReactivateInTx(ctx, tx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate loans: %w", err)
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordLoanStatusChange(string(StatusOverdue), len(overdue))
	monitoring.RecordLoanStatusChange(string(StatusActive), len(reactivated))
	for _, c := range overdue {
		s.publishStatusChange(ctx, c)
	}
	for _, c := range reactivated {
		s.publishStatusChange(ctx, c)
	}

	s.logger.InfoContext(ctx, "Loan statuses refreshed",
		slog.Int("markedOverdue", len(overdue)),
		slog.Int("reactivated", len(reactivated)))
	return &RefreshResult{MarkedOverdue: len(overdue), Reactivated: len(reactivated)}, nil
}
