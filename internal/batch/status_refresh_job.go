package batch

import (
	"agv-finance/internal/domain/loan"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DashboardInvalidator drops cached dashboard figures after statuses move.
type DashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context)
}

// StatusRefreshJob marks active loans past maturity as overdue and returns
// overdue loans whose maturity is no longer past to active. Repaid loans are
// completed by the payment that settles them.
type StatusRefreshJob struct {
	loans   loan.LoanService
	reports DashboardInvalidator
	logger  *slog.Logger
	now     func() time.Time
}

func NewStatusRefreshJob(loans loan.LoanService, reports DashboardInvalidator, logger *slog.Logger) *StatusRefreshJob {
	if loans == nil || logger == nil {
		panic("StatusRefreshJob dependencies cannot be nil")
	}
	return &StatusRefreshJob{
		loans:   loans,
		reports: reports,
		logger:  logger.With("job", "StatusRefresh"),
		now:     time.Now,
	}
}

func (j *StatusRefreshJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting loan status refresh job.")

	res, err := j.loans.RefreshStatuses(ctx, j.now())
	if err != nil {
		j.logger.ErrorContext(ctx, "Loan status refresh failed.", slog.Any("error", err))
		return fmt.Errorf("refresh loan statuses: %w", err)
	}

	if res.MarkedOverdue+res.Reactivated > 0 && j.reports != nil {
		j.reports.InvalidateDashboard(ctx)
	}
	j.logger.InfoContext(ctx, "Loan status refresh job finished.",
		slog.Int("marked_overdue", res.MarkedOverdue),
		slog.Int("reactivated", res.Reactivated),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
