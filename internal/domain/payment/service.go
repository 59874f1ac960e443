package payment

import (
	"agv-finance/internal/domain/loan"
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

const MinSearchLength = 3

type RecordInput struct {
	LoanID        uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Method        string
	TransactionID string
	Notes         string
	CreatedBy     string
}

type ListResult struct {
	Payments []*Payment
	Total    int
	Page     int
	PerPage  int
}

// Receipt is what a customer is sent after a payment is recorded.
type Receipt struct {
	Payment              *Payment
	Loan                 *loan.Loan
	OutstandingPrincipal decimal.Decimal
}

type ReceiptSender interface {
	SendPaymentReceipt(ctx context.Context, to string, r Receipt) error
}

type PaymentService interface {
	RecordPayment(ctx context.Context, input RecordInput) (*Payment, error)

	GetPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error)

	ListPayments(ctx context.Context, filter ListFilter) (*ListResult, error)

	ListLoanPayments(ctx context.Context, loanID uuid.UUID) ([]*Payment, error)
}

var _ PaymentService = (*paymentServiceImpl)(nil)

type paymentServiceImpl struct {
	repo   Repository
	loans  loan.Repository
	pub    event.EventPublisher
	mailer ReceiptSender
	logger *slog.Logger
	now    func() time.Time
}

// NewPaymentService wires the payment service. mailer may be nil, in which
// case no receipts are sent.
func NewPaymentService(repo Repository, loans loan.Repository, pub event.EventPublisher, mailer ReceiptSender, logger *slog.Logger) PaymentService {
	if repo == nil || loans == nil {
		panic("payment and loan repositories cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	if pub == nil {
		pub = event.NewNoopPublisher(logger)
	}
	return &paymentServiceImpl{
		repo:   repo,
		loans:  loans,
		pub:    pub,
		mailer: mailer,
		logger: logger.With(slog.String("component", "paymentService")),
		now:    time.Now,
	}
}

func validateInput(in RecordInput, now time.Time) (RecordInput, error) {
	fields := validation.Fields{}

	if in.LoanID == uuid.Nil {
		fields["loan_id"] = "Loan is required"
	}
	fields.Check("amount", validation.AmountRange(in.Amount, validation.MinPaymentAmount, validation.MaxPaymentAmount))

	var err error
	in.Method, err = validation.PaymentMethod(in.Method)
	fields.Check("payment_method", err)

	if in.PaymentDate.IsZero() {
		in.PaymentDate = now.UTC()
	} else {
		fields.Check("payment_date", validation.DateRange(in.PaymentDate, false, now))
	}
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Amount = in.Amount.Round(2)
	return in, fields.Err()
}

// RecordPayment locks the loan, splits the amount between interest due and
// principal, stores the payment and completes the loan once its principal is
// repaid. Everything up to the commit happens in one transaction.
func (s *paymentServiceImpl) RecordPayment(ctx context.Context, input RecordInput) (p *Payment, err error) {
	logCtx := s.logger.With(slog.String("loanID", input.LoanID.String()))
	logCtx.InfoContext(ctx, "Recording payment", slog.String("amount", input.Amount.String()))

	status := "failure_internal"
	defer func() {
		if err == nil {
			status = "success"
		}
		monitoring.RecordPayment(status)
	}()

	input, err = validateInput(input, s.now())
	if err != nil {
		status = "failure_validation"
		logCtx.WarnContext(ctx, "Payment validation failed", slog.Any("error", err))
		return nil, err
	}

	tx, err := s.loans.BeginTx(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}
	defer func() {
		if r := recover(); r != nil {
			logCtx.ErrorContext(ctx, "Panic occurred during payment processing", slog.Any("panic", r))
			_ = s.loans.RollbackTx(ctx, tx)
			panic(r)
		} else if err != nil {
			logCtx.WarnContext(ctx, "Rolling back payment transaction", slog.Any("error", err))
			_ = s.loans.RollbackTx(ctx, tx)
		}
	}()

	l, err := s.loans.FindByIDForUpdate(ctx, tx, input.LoanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			status = "failure_not_found"
			return nil, fmt.Errorf("%w: %w (id %s)", apperrors.ErrNotFound, loan.ErrNotFound, input.LoanID)
		}
		return nil, fmt.Errorf("failed to lock loan %s: %w", input.LoanID, err)
	}

	totals, err := s.loans.PaidTotalsInTx(ctx, tx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load paid totals: %w", err)
	}

	principal, interest, err := l.SplitPayment(input.Amount, totals, input.PaymentDate)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrLoanSettled):
			status = "failure_settled"
		case errors.Is(err, apperrors.ErrInvalidPaymentAmount):
			status = "failure_amount"
		}
		return nil, err
	}

	p = NewPayment(l.ID, input.Amount, Allocation{Principal: principal, Interest: interest}, input)
	if err = s.repo.CreateInTx(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	outstanding := l.Principal.Sub(totals.PrincipalPaid).Sub(principal)
	oldStatus := l.Status
	if next := l.DeriveStatus(outstanding, s.now()); next != oldStatus {
		if err = s.loans.UpdateStatusInTx(ctx, tx, l.ID, next); err != nil {
			return nil, fmt.Errorf("failed to move loan to %s: %w", next, err)
		}
		l.Status = next
	}

	if err = s.loans.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrInternalServer, err)
	}

	p.LoanNumber = l.LoanNumber
	p.CustomerName = l.CustomerName
	monitoring.RecordPaymentAmount(p.Amount.InexactFloat64())
	logCtx.InfoContext(ctx, "Payment recorded",
		slog.String("paymentNumber", p.PaymentNumber),
		slog.String("principal", principal.StringFixed(2)),
		slog.String("interest", interest.StringFixed(2)))

	s.afterCommit(ctx, p, l, oldStatus, outstanding)
	return p, nil
}

func (s *paymentServiceImpl) afterCommit(ctx context.Context, p *Payment, l *loan.Loan, oldStatus loan.Status, outstanding decimal.Decimal) {
	ev := event.PaymentRecordedEvent{
		Timestamp:       time.Now(),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		LoanID:          l.ID,
		LoanNumber:      l.LoanNumber,
		Amount:          p.Amount.StringFixed(2),
		PrincipalAmount: p.PrincipalAmount.StringFixed(2),
		InterestAmount:  p.InterestAmount.StringFixed(2),
		PaymentMethod:   p.PaymentMethod,
		PaymentDate:     p.PaymentDate,
		LoanStatus:      string(l.Status),
	}
	if err := s.pub.PublishPaymentRecorded(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish payment recorded event", slog.Any("error", err))
	}

	if l.Status != oldStatus {
		monitoring.RecordLoanStatusChange(string(l.Status), 1)
		sc := event.LoanStatusChangedEvent{
			Timestamp:  time.Now(),
			LoanID:     l.ID,
			LoanNumber: l.LoanNumber,
			OldStatus:  string(oldStatus),
			NewStatus:  string(l.Status),
		}
		if err := s.pub.PublishLoanStatusChanged(ctx, sc); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish loan status change", slog.Any("error", err))
		}
	}

	if s.mailer == nil || l.CustomerEmail == "" {
		return
	}
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	r := Receipt{Payment: p, Loan: l, OutstandingPrincipal: outstanding}
	if err := s.mailer.SendPaymentReceipt(ctx, l.CustomerEmail, r); err != nil {
		s.logger.WarnContext(ctx, "Failed to send payment receipt", slog.String("paymentNumber", p.PaymentNumber), slog.Any("error", err))
	}
}

func (s *paymentServiceImpl) GetPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	p, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Payment not found", slog.String("paymentID", paymentID.String()))
			return nil, fmt.Errorf("%w: %w (id %s)", apperrors.ErrNotFound, ErrNotFound, paymentID)
		}
		s.logger.ErrorContext(ctx, "Failed to get payment", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get payment %s: %w", paymentID, err)
	}
	return p, nil
}

// ListPayments ignores search queries shorter than MinSearchLength.
func (s *paymentServiceImpl) ListPayments(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.Params = filter.Params.Normalize()
	filter.Query = strings.TrimSpace(filter.Query)
	if len([]rune(filter.Query)) < MinSearchLength {
		filter.Query = ""
	}
	if filter.Method != "" {
		m, err := validation.PaymentMethod(filter.Method)
		if err != nil {
			return nil, apperrors.NewValidationError("method", err.Error())
		}
		filter.Method = m
	}
	if filter.Date != nil {
		d := loan.DateOf(*filter.Date)
		filter.Date = &d
	}

	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list payments", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &ListResult{Payments: payments, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

func (s *paymentServiceImpl) ListLoanPayments(ctx context.Context, loanID uuid.UUID) ([]*Payment, error) {
	payments, err := s.repo.ListByLoan(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loan payments", slog.String("loanID", loanID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list payments of loan %s: %w", loanID, err)
	}
	return payments, nil
}
