package postgres

import (
	"agv-finance/internal/domain/loan"
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

const loanSelect = `
        SELECT l.id, l.customer_id, l.loan_number, l.principal_amount, l.interest_rate, l.tenure_months,
            l.loan_type, l.disbursed_date, l.maturity_date, l.status, l.collateral_details, l.document_urls,
            l.created_at, l.updated_at, c.name, c.mobile, COALESCE(c.email, '')
        FROM loans l
        JOIN customers c ON c.id = l.customer_id`

type LoanRepository struct {
	txManager
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	logger = logger.With("component", "LoanRepository")
	return &LoanRepository{
		txManager: txManager{db: db, logger: logger},
		db:        db,
		logger:    logger,
	}
}

func scanLoan(row rowScanner) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.CustomerID, &l.LoanNumber, &l.Principal, &l.InterestRate, &l.TenureMonths,
		&l.LoanType, &l.DisbursedDate, &l.MaturityDate, &l.Status, &l.CollateralDetails, &l.DocumentURLs,
		&l.CreatedAt, &l.UpdatedAt, &l.CustomerName, &l.CustomerMobile, &l.CustomerEmail,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) collect(ctx context.Context, rows pgx.Rows) ([]*loan.Loan, error) {
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan loan row: %w", apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating loan rows: %w", apperrors.ErrDatabase, err)
	}
	return loans, nil
}

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) (err error) {
	if l == nil {
		return fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer observe("loan_create", time.Now(), &err)

	query := `
        INSERT INTO loans (id, customer_id, loan_number, principal_amount, interest_rate, tenure_months, loan_type,
            disbursed_date, maturity_date, status, collateral_details, document_urls, created_at, updated_at)
        VALUES ($1, $2, 'LOAN' || LPAD(nextval('loan_number_seq')::text, 6, '0'), $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
        RETURNING loan_number, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		l.ID, l.CustomerID, l.Principal, l.InterestRate, l.TenureMonths, l.LoanType,
		l.DisbursedDate, l.MaturityDate, l.Status, l.CollateralDetails, l.DocumentURLs,
	).Scan(&l.LoanNumber, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", l.ID, "loan_number", l.LoanNumber)
	return nil
}

func (r *LoanRepository) FindByID(ctx context.Context, loanID uuid.UUID) (l *loan.Loan, err error) {
	defer observe("loan_find_by_id", time.Now(), &err)

	l, err = scanLoan(r.db.QueryRow(ctx, loanSelect+` WHERE l.id = $1`, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan loan by ID", "error", err)
		return nil, fmt.Errorf("%w: failed to get loan by ID: %w", apperrors.ErrDatabase, err)
	}
	return l, nil
}

// FindByIDForUpdate locks the loan row until tx ends.
func (r *LoanRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (l *loan.Loan, err error) {
	defer observe("loan_find_for_update", time.Now(), &err)

	l, err = scanLoan(tx.QueryRow(ctx, loanSelect+` WHERE l.id = $1 FOR UPDATE OF l`, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan", "error", err, "loan_id", loanID)
		return nil, fmt.Errorf("%w: failed to lock loan: %w", apperrors.ErrDatabase, err)
	}
	return l, nil
}

func loanFilterClause(filter loan.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("l.status = $%d", len(args)))
	}
	if filter.LoanType != "" {
		args = append(args, filter.LoanType)
		conds = append(conds, fmt.Sprintf("l.loan_type = $%d", len(args)))
	}
	if filter.CustomerID != uuid.Nil {
		args = append(args, filter.CustomerID)
		conds = append(conds, fmt.Sprintf("l.customer_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *LoanRepository) List(ctx context.Context, filter loan.ListFilter) (loans []*loan.Loan, total int, err error) {
	defer observe("loan_list", time.Now(), &err)

	where, args := loanFilterClause(filter)
	if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM loans l`+where, args...).Scan(&total); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count loans", "error", err)
		return nil, 0, fmt.Errorf("%w: failed to count loans: %w", apperrors.ErrDatabase, err)
	}

	args = append(args, filter.PerPage, filter.Offset())
	query := loanSelect + where + fmt.Sprintf(` ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, 0, fmt.Errorf("%w: failed to query loans: %w", apperrors.ErrDatabase, err)
	}
	loans, err = r.collect(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return loans, total, nil
}

func (r *LoanRepository) Search(ctx context.Context, query string, limit int) (loans []*loan.Loan, err error) {
	defer observe("loan_search", time.Now(), &err)

	sql := loanSelect + `
        WHERE LOWER(l.loan_number) LIKE $1 ESCAPE '\' OR LOWER(c.name) LIKE $1 ESCAPE '\' OR c.mobile LIKE $1 ESCAPE '\'
        ORDER BY (l.status IN ('active', 'overdue')) DESC, l.created_at DESC
        LIMIT $2`

	rows, err := r.db.Query(ctx, sql, likePattern(query), limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to search loans", "error", err)
		return nil, fmt.Errorf("%w: failed to search loans: %w", apperrors.ErrDatabase, err)
	}
	return r.collect(ctx, rows)
}

const paidTotalsQuery = `
        SELECT COALESCE(SUM(principal_amount), 0), COALESCE(SUM(interest_amount), 0), COUNT(*), MAX(payment_date)
        FROM payments
        WHERE loan_id = $1`

func (r *LoanRepository) PaidTotals(ctx context.Context, loanID uuid.UUID) (loan.Totals, error) {
	return r.paidTotals(ctx, r.db, loanID)
}

func (r *LoanRepository) PaidTotalsInTx(ctx context.Context, tx pgx.Tx, loanID uuid.UUID) (loan.Totals, error) {
	return r.paidTotals(ctx, tx, loanID)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *LoanRepository) paidTotals(ctx context.Context, q queryRower, loanID uuid.UUID) (t loan.Totals, err error) {
	defer observe("loan_paid_totals", time.Now(), &err)

	err = q.QueryRow(ctx, paidTotalsQuery, loanID).Scan(&t.PrincipalPaid, &t.InterestPaid, &t.PaymentCount, &t.LastPayment)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to sum payments", "error", err, "loan_id", loanID)
		return loan.Totals{}, fmt.Errorf("%w: failed to sum payments: %w", apperrors.ErrDatabase, err)
	}
	return t, nil
}

const updateStatusQuery = `UPDATE loans SET status = $1, updated_at = NOW() WHERE id = $2`

func (r *LoanRepository) UpdateStatus(ctx context.Context, loanID uuid.UUID, status loan.Status) (err error) {
	defer observe("loan_update_status", time.Now(), &err)

	cmdTag, err := r.db.Exec(ctx, updateStatusQuery, status, loanID)
	return r.statusResult(ctx, loanID, status, cmdTag.RowsAffected(), err)
}

func (r *LoanRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, loanID uuid.UUID, status loan.Status) (err error) {
	defer observe("loan_update_status", time.Now(), &err)

	cmdTag, err := tx.Exec(ctx, updateStatusQuery, status, loanID)
	return r.statusResult(ctx, loanID, status, cmdTag.RowsAffected(), err)
}

func (r *LoanRepository) statusResult(ctx context.Context, loanID uuid.UUID, status loan.Status, affected int64, err error) error {
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan status", "error", err, "loan_id", loanID)
		return fmt.Errorf("%w: failed to update loan status: %w", apperrors.ErrDatabase, err)
	}
	if affected == 0 {
		r.logger.WarnContext(ctx, "Loan status update affected zero rows", "loan_id", loanID)
		return apperrors.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Loan status updated", "loan_id", loanID, "status", status)
	return nil
}

// MarkOverdueInTx flips active loans whose maturity date is before today.
func (r *LoanRepository) MarkOverdueInTx(ctx context.Context, tx pgx.Tx, today time.Time) ([]loan.StatusChange, error) {
	query := `
        UPDATE loans SET status = 'overdue', updated_at = NOW()
        WHERE status = 'active' AND maturity_date < $1
        RETURNING id, loan_number`
	return r.bulkStatus(ctx, tx, "loan_mark_overdue", query, today, loan.StatusActive, loan.StatusOverdue)
}

// ReactivateInTx returns overdue loans whose maturity date is today or later to active.
func (r *LoanRepository) ReactivateInTx(ctx context.Context, tx pgx.Tx, today time.Time) ([]loan.StatusChange, error) {
	query := `
        UPDATE loans SET status = 'active', updated_at = NOW()
        WHERE status = 'overdue' AND maturity_date >= $1
        RETURNING id, loan_number`
	return r.bulkStatus(ctx, tx, "loan_reactivate", query, today, loan.StatusOverdue, loan.StatusActive)
}

func (r *LoanRepository) bulkStatus(ctx context.Context, tx pgx.Tx, name, query string, today time.Time, from, to loan.Status) (changes []loan.StatusChange, err error) {
	defer observe(name, time.Now(), &err)
	logCtx := r.logger.With(slog.String("operation", name))

	rows, err := tx.Query(ctx, query, today)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to update loan statuses", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to update loan statuses: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	changes = make([]loan.StatusChange, 0)
	for rows.Next() {
		c := loan.StatusChange{From: from, To: to}
		if err := rows.Scan(&c.LoanID, &c.LoanNumber); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan status change", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan status change: %w", apperrors.ErrDatabase, err)
		}
		changes = append(changes, c)
	}
	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating status changes", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating status changes: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Loan statuses updated", slog.Int("count", len(changes)))
	return changes, nil
}
