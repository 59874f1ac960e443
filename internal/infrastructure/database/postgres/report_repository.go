package postgres

import (
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/domain/report"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const overdueCondition = `(l.status = 'overdue' OR (l.status = 'active' AND l.maturity_date < $1))`

type ReportRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ report.Repository = (*ReportRepository)(nil)

func NewReportRepository(db DBPool, logger *slog.Logger) *ReportRepository {
	if db == nil {
		panic("DBPool cannot be nil for ReportRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &ReportRepository{db: db, logger: logger.With("component", "ReportRepository")}
}

func (r *ReportRepository) fail(ctx context.Context, what string, err error) error {
	r.logger.ErrorContext(ctx, "Report query failed", slog.String("query", what), slog.Any("error", err))
	return fmt.Errorf("%w: failed to query %s: %w", apperrors.ErrDatabase, what, err)
}

func (r *ReportRepository) CountActiveCustomers(ctx context.Context) (n int, err error) {
	defer observe("report_count_customers", time.Now(), &err)

	if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE status = 'active'`).Scan(&n); err != nil {
		return 0, r.fail(ctx, "active customers", err)
	}
	return n, nil
}

func (r *ReportRepository) LoanTotals(ctx context.Context, today time.Time) (t report.LoanTotals, err error) {
	defer observe("report_loan_totals", time.Now(), &err)

	query := `
        SELECT COUNT(*) FILTER (WHERE l.status = 'active' AND l.maturity_date >= $1),
            COUNT(*) FILTER (WHERE ` + overdueCondition + `),
            COALESCE(SUM(l.principal_amount) FILTER (WHERE l.status IN ('active', 'overdue')), 0)
        FROM loans l`

	if err = r.db.QueryRow(ctx, query, today).Scan(&t.ActiveCount, &t.OverdueCount, &t.ActivePrincipal); err != nil {
		return report.LoanTotals{}, r.fail(ctx, "loan totals", err)
	}
	return t, nil
}

func (r *ReportRepository) TotalInterestCollected(ctx context.Context) (d decimal.Decimal, err error) {
	defer observe("report_interest_collected", time.Now(), &err)

	if err = r.db.QueryRow(ctx, `SELECT COALESCE(SUM(interest_amount), 0) FROM payments`).Scan(&d); err != nil {
		return decimal.Zero, r.fail(ctx, "interest collected", err)
	}
	return d, nil
}

func (r *ReportRepository) PeriodActivity(ctx context.Context, p report.Period) (a report.Activity, err error) {
	defer observe("report_period_activity", time.Now(), &err)

	query := `
        SELECT
            (SELECT COUNT(*) FROM customers WHERE created_at >= $1 AND created_at < $2),
            COUNT(DISTINCT l.customer_id),
            COUNT(l.id),
            COALESCE(SUM(l.principal_amount), 0),
            COALESCE(AVG(l.interest_rate), 0),
            (SELECT COALESCE(SUM(principal_amount), 0) FROM payments WHERE payment_date >= $1 AND payment_date < $2),
            (SELECT COALESCE(SUM(interest_amount), 0) FROM payments WHERE payment_date >= $1 AND payment_date < $2)
        FROM loans l
        WHERE l.disbursed_date >= $1 AND l.disbursed_date < $2`

	err = r.db.QueryRow(ctx, query, p.From, p.To).Scan(
		&a.NewCustomers, &a.Borrowers, &a.LoansCount, &a.Disbursed, &a.AverageRate,
		&a.PrincipalCollected, &a.InterestCollected,
	)
	if err != nil {
		return report.Activity{}, r.fail(ctx, "period activity", err)
	}
	return a, nil
}

func (r *ReportRepository) MonthlyDisbursement(ctx context.Context, p report.Period) (out []report.MonthlyAmount, err error) {
	defer observe("report_monthly_disbursement", time.Now(), &err)

	query := `
        SELECT EXTRACT(YEAR FROM disbursed_date)::int, EXTRACT(MONTH FROM disbursed_date)::int, SUM(principal_amount)
        FROM loans
        WHERE disbursed_date >= $1 AND disbursed_date < $2
        GROUP BY 1, 2
        ORDER BY 1, 2`

	rows, err := r.db.Query(ctx, query, p.From, p.To)
	if err != nil {
		return nil, r.fail(ctx, "monthly disbursement", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (m report.MonthlyAmount, err error) {
		err = row.Scan(&m.Year, &m.Month, &m.Amount)
		return m, err
	})
	if err != nil {
		return nil, r.fail(ctx, "monthly disbursement", err)
	}
	return out, nil
}

func (r *ReportRepository) LoanTypeBreakdown(ctx context.Context, p report.Period) (out []report.TypeBreakdown, err error) {
	defer observe("report_loan_types", time.Now(), &err)

	query := `
        SELECT loan_type, COUNT(*), SUM(principal_amount)
        FROM loans
        WHERE disbursed_date >= $1 AND disbursed_date < $2
        GROUP BY loan_type
        ORDER BY 3 DESC`

	rows, err := r.db.Query(ctx, query, p.From, p.To)
	if err != nil {
		return nil, r.fail(ctx, "loan types", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (b report.TypeBreakdown, err error) {
		err = row.Scan(&b.Type, &b.Count, &b.Amount)
		return b, err
	})
	if err != nil {
		return nil, r.fail(ctx, "loan types", err)
	}
	return out, nil
}

func (r *ReportRepository) MonthlyFinancials(ctx context.Context, p report.Period) (out []report.FinancialMonth, err error) {
	defer observe("report_monthly_financials", time.Now(), &err)

	query := `
        WITH d AS (
            SELECT date_trunc('month', disbursed_date)::date AS m, SUM(principal_amount) AS disbursed
            FROM loans
            WHERE disbursed_date >= $1 AND disbursed_date < $2
            GROUP BY 1
        ), c AS (
            SELECT date_trunc('month', payment_date)::date AS m,
                SUM(principal_amount) AS collected, SUM(interest_amount) AS interest
            FROM payments
            WHERE payment_date >= $1 AND payment_date < $2
            GROUP BY 1
        )
        SELECT COALESCE(d.m, c.m), COALESCE(d.disbursed, 0), COALESCE(c.collected, 0), COALESCE(c.interest, 0)
        FROM d FULL OUTER JOIN c ON c.m = d.m
        ORDER BY 1`

	rows, err := r.db.Query(ctx, query, p.From, p.To)
	if err != nil {
		return nil, r.fail(ctx, "monthly financials", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (f report.FinancialMonth, err error) {
		var month time.Time
		err = row.Scan(&month, &f.Disbursed, &f.Collected, &f.Interest)
		f.Month = month.Format("Jan 2006")
		return f, err
	})
	if err != nil {
		return nil, r.fail(ctx, "monthly financials", err)
	}
	return out, nil
}

func (r *ReportRepository) OutstandingBefore(ctx context.Context, t time.Time) (d decimal.Decimal, err error) {
	defer observe("report_outstanding_before", time.Now(), &err)

	query := `
        SELECT (SELECT COALESCE(SUM(principal_amount), 0) FROM loans WHERE disbursed_date < $1)
             - (SELECT COALESCE(SUM(principal_amount), 0) FROM payments WHERE payment_date < $1)`

	if err = r.db.QueryRow(ctx, query, t).Scan(&d); err != nil {
		return decimal.Zero, r.fail(ctx, "opening outstanding", err)
	}
	return d, nil
}

func (r *ReportRepository) RecentLoans(ctx context.Context, limit int) (out []report.ActivityItem, err error) {
	defer observe("report_recent_loans", time.Now(), &err)

	query := `
        SELECT l.id, l.loan_number, c.name, l.principal_amount, l.loan_type, l.disbursed_date
        FROM loans l
        JOIN customers c ON c.id = l.customer_id
        ORDER BY l.created_at DESC
        LIMIT $1`
	return r.activity(ctx, "recent loans", query, limit)
}

func (r *ReportRepository) RecentPayments(ctx context.Context, limit int) (out []report.ActivityItem, err error) {
	defer observe("report_recent_payments", time.Now(), &err)

	query := `
        SELECT p.id, p.payment_number, c.name, p.amount, p.payment_method, p.payment_date
        FROM payments p
        JOIN loans l ON l.id = p.loan_id
        JOIN customers c ON c.id = l.customer_id
        ORDER BY p.created_at DESC
        LIMIT $1`
	return r.activity(ctx, "recent payments", query, limit)
}

func (r *ReportRepository) activity(ctx context.Context, what, query string, limit int) ([]report.ActivityItem, error) {
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, r.fail(ctx, what, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (a report.ActivityItem, err error) {
		err = row.Scan(&a.ID, &a.Reference, &a.Customer, &a.Amount, &a.Type, &a.Date)
		return a, err
	})
	if err != nil {
		return nil, r.fail(ctx, what, err)
	}
	return out, nil
}

func (r *ReportRepository) LoansSummary(ctx context.Context, p report.Period) (loans []*loan.Loan, err error) {
	defer observe("report_loans_summary", time.Now(), &err)

	query := loanSelect + `
        WHERE l.disbursed_date >= $1 AND l.disbursed_date < $2
        ORDER BY l.disbursed_date DESC, l.loan_number DESC`

	rows, err := r.db.Query(ctx, query, p.From, p.To)
	if err != nil {
		return nil, r.fail(ctx, "loans summary", err)
	}
	loans, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*loan.Loan, error) { return scanLoan(row) })
	if err != nil {
		return nil, r.fail(ctx, "loans summary", err)
	}
	return loans, nil
}

func (r *ReportRepository) CustomerAggregates(ctx context.Context, today time.Time, limit int) (out []report.CustomerAnalysisRow, err error) {
	defer observe("report_customer_aggregates", time.Now(), &err)

	query := `
        SELECT c.id, c.name, c.mobile, c.status,
            COUNT(l.id),
            COUNT(l.id) FILTER (WHERE ` + overdueCondition + `),
            COALESCE(SUM(l.principal_amount), 0),
            MAX(l.disbursed_date)
        FROM customers c
        LEFT JOIN loans l ON l.customer_id = c.id
        GROUP BY c.id
        ORDER BY COALESCE(SUM(l.principal_amount), 0) DESC, c.name
        LIMIT $2`

	rows, err := r.db.Query(ctx, query, today, limit)
	if err != nil {
		return nil, r.fail(ctx, "customer aggregates", err)
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (c report.CustomerAnalysisRow, err error) {
		err = row.Scan(&c.ID, &c.Name, &c.Mobile, &c.Status, &c.TotalLoans, &c.OverdueLoans, &c.TotalAmount, &c.LastLoanDate)
		return c, err
	})
	if err != nil {
		return nil, r.fail(ctx, "customer aggregates", err)
	}
	return out, nil
}

func (r *ReportRepository) AverageLoanSize(ctx context.Context) (d decimal.Decimal, err error) {
	defer observe("report_average_loan_size", time.Now(), &err)

	if err = r.db.QueryRow(ctx, `SELECT COALESCE(AVG(principal_amount), 0) FROM loans`).Scan(&d); err != nil {
		return decimal.Zero, r.fail(ctx, "average loan size", err)
	}
	return d, nil
}
