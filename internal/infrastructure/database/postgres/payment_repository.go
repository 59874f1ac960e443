package postgres

import (
	"agv-finance/internal/domain/payment"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentSelect = `
        SELECT p.id, p.loan_id, p.payment_number, p.amount, p.principal_amount, p.interest_amount,
            p.payment_date, p.payment_method, COALESCE(p.transaction_id, ''), p.receipt_number,
            COALESCE(p.notes, ''), COALESCE(p.created_by, ''), p.created_at, l.loan_number, c.name
        FROM payments p
        JOIN loans l ON l.id = p.loan_id
        JOIN customers c ON c.id = l.customer_id`

type PaymentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(db DBPool, logger *slog.Logger) *PaymentRepository {
	if db == nil {
		panic("DBPool cannot be nil for PaymentRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &PaymentRepository{db: db, logger: logger.With("component", "PaymentRepository")}
}

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.LoanID, &p.PaymentNumber, &p.Amount, &p.PrincipalAmount, &p.InterestAmount,
		&p.PaymentDate, &p.PaymentMethod, &p.TransactionID, &p.ReceiptNumber,
		&p.Notes, &p.CreatedBy, &p.CreatedAt, &p.LoanNumber, &p.CustomerName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateInTx draws one value from payment_number_seq and derives both the
// payment number and the dated receipt number from it.
func (r *PaymentRepository) CreateInTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) (err error) {
	if p == nil {
		return fmt.Errorf("%w: payment cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer observe("payment_create", time.Now(), &err)

	query := `
        WITH seq AS (SELECT nextval('payment_number_seq') AS n)
        INSERT INTO payments (id, loan_id, payment_number, amount, principal_amount, interest_amount, payment_date,
            payment_method, transaction_id, receipt_number, notes, created_by, created_at)
        SELECT $1, $2, 'PAY' || LPAD(seq.n::text, 6, '0'), $3, $4, $5, $6, $7, NULLIF($8, ''),
            'RCPT-' || TO_CHAR($6::date, 'YYYYMMDD') || '-' || LPAD(seq.n::text, 6, '0'),
            NULLIF($9, ''), NULLIF($10, ''), NOW()
        FROM seq
        RETURNING payment_number, receipt_number, created_at`

	err = tx.QueryRow(ctx, query,
		p.ID, p.LoanID, p.Amount, p.PrincipalAmount, p.InterestAmount, p.PaymentDate,
		p.PaymentMethod, p.TransactionID, p.Notes, p.CreatedBy,
	).Scan(&p.PaymentNumber, &p.ReceiptNumber, &p.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert payment", "error", err, "loan_id", p.LoanID)
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Payment inserted", "payment_number", p.PaymentNumber, "receipt_number", p.ReceiptNumber)
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, paymentID uuid.UUID) (p *payment.Payment, err error) {
	defer observe("payment_find_by_id", time.Now(), &err)

	p, err = scanPayment(r.db.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan payment", "error", err)
		return nil, fmt.Errorf("%w: failed to get payment: %w", apperrors.ErrDatabase, err)
	}
	return p, nil
}

func paymentFilterClause(filter payment.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Query != "" {
		args = append(args, likePattern(filter.Query))
		conds = append(conds, strings.ReplaceAll(`(LOWER(p.payment_number) LIKE $n ESCAPE '\'`+
			` OR LOWER(l.loan_number) LIKE $n ESCAPE '\' OR LOWER(c.name) LIKE $n ESCAPE '\')`,
			"$n", fmt.Sprintf("$%d", len(args))))
	}
	if filter.Method != "" {
		args = append(args, filter.Method)
		conds = append(conds, fmt.Sprintf("p.payment_method = $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		conds = append(conds, fmt.Sprintf("p.payment_date = $%d", len(args)))
	}
	if filter.LoanID != uuid.Nil {
		args = append(args, filter.LoanID)
		conds = append(conds, fmt.Sprintf("p.loan_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PaymentRepository) List(ctx context.Context, filter payment.ListFilter) (payments []*payment.Payment, total int, err error) {
	defer observe("payment_list", time.Now(), &err)

	where, args := paymentFilterClause(filter)
	countQuery := `
        SELECT COUNT(*)
        FROM payments p
        JOIN loans l ON l.id = p.loan_id
        JOIN customers c ON c.id = l.customer_id` + where
	if err = r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count payments", "error", err)
		return nil, 0, fmt.Errorf("%w: failed to count payments: %w", apperrors.ErrDatabase, err)
	}

	args = append(args, filter.PerPage, filter.Offset())
	query := paymentSelect + where +
		fmt.Sprintf(` ORDER BY p.payment_date DESC, p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	payments, err = r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) (payments []*payment.Payment, err error) {
	defer observe("payment_list_by_loan", time.Now(), &err)
	return r.query(ctx, paymentSelect+` WHERE p.loan_id = $1 ORDER BY p.payment_date DESC, p.created_at DESC`, loanID)
}

func (r *PaymentRepository) query(ctx context.Context, query string, args ...any) ([]*payment.Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query payments", "error", err)
		return nil, fmt.Errorf("%w: failed to query payments: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments := make([]*payment.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan payment row", "error", err)
			return nil, fmt.Errorf("%w: failed to scan payment row: %w", apperrors.ErrDatabase, err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating payment rows", "error", err)
		return nil, fmt.Errorf("%w: error iterating payment rows: %w", apperrors.ErrDatabase, err)
	}
	return payments, nil
}
