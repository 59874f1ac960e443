package report

import (
	"agv-finance/internal/domain/loan"
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository runs the aggregate queries behind the dashboard and reports.
// Periods are half-open; "today" is passed in so overdue counts are stable
// under test.
type Repository interface {
	CountActiveCustomers(ctx context.Context) (int, error)

	LoanTotals(ctx context.Context, today time.Time) (LoanTotals, error)

	TotalInterestCollected(ctx context.Context) (decimal.Decimal, error)

	PeriodActivity(ctx context.Context, p Period) (Activity, error)

	MonthlyDisbursement(ctx context.Context, p Period) ([]MonthlyAmount, error)

	LoanTypeBreakdown(ctx context.Context, p Period) ([]TypeBreakdown, error)

	// MonthlyFinancials returns one row per month that saw a disbursement or
	// a collection, oldest first. Outstanding is left for the caller.
	MonthlyFinancials(ctx context.Context, p Period) ([]FinancialMonth, error)

	// OutstandingBefore is principal disbursed minus principal collected
	// before t.
	OutstandingBefore(ctx context.Context, t time.Time) (decimal.Decimal, error)

	RecentLoans(ctx context.Context, limit int) ([]ActivityItem, error)

	RecentPayments(ctx context.Context, limit int) ([]ActivityItem, error)

	LoansSummary(ctx context.Context, p Period) ([]*loan.Loan, error)

	CustomerAggregates(ctx context.Context, today time.Time, limit int) ([]CustomerAnalysisRow, error)

	AverageLoanSize(ctx context.Context) (decimal.Decimal, error)
}

// Cache stores serialised report values. A miss is (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
