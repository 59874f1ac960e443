package report

import (
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/infrastructure/monitoring"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DashboardCacheKey  = "report:dashboard"
	DefaultCacheTTL    = 5 * time.Minute
	dashboardMonths    = 6
	newCustomerWindow  = 30
	trendDateLayout    = "2006-01"
	overviewDateLayout = "Jan 2006"
)

type ReportService interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)

	Metrics(ctx context.Context, p Period) (*Metrics, error)

	Charts(ctx context.Context, p Period) (*Charts, error)

	LoansSummary(ctx context.Context, p Period) ([]*loan.Loan, error)

	CustomerAnalysis(ctx context.Context) (*CustomerAnalysis, error)

	// InvalidateDashboard drops the cached dashboard so the next read is fresh.
	InvalidateDashboard(ctx context.Context)
}

var _ ReportService = (*reportServiceImpl)(nil)

type reportServiceImpl struct {
	repo   Repository
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewReportService wires the report service. cache may be nil, in which case
// every dashboard read goes to the database.
func NewReportService(repo Repository, cache Cache, ttl time.Duration, logger *slog.Logger) ReportService {
	if repo == nil {
		panic("report repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &reportServiceImpl{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "reportService")),
		now:    time.Now,
	}
}

func (s *reportServiceImpl) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		hit, err := s.cache.Get(ctx, DashboardCacheKey, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "Dashboard cache read failed", slog.Any("error", err))
		}
		monitoring.RecordCacheLookup(hit)
		if hit {
			return &cached, nil
		}
	}

	stats, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, DashboardCacheKey, stats, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "Dashboard cache write failed", slog.Any("error", err))
		}
	}
	return stats, nil
}

func (s *reportServiceImpl) buildDashboard(ctx context.Context) (*DashboardStats, error) {
	now := s.now().UTC()
	today := loan.DateOf(now)
	thisMonth := MonthPeriod(today)
	lastMonth := MonthPeriod(thisMonth.From.AddDate(0, -1, 0))
	series := Period{From: loan.AddMonths(thisMonth.From, -(dashboardMonths - 1)), To: thisMonth.To}

	stats := &DashboardStats{GeneratedAt: now}
	var (
		totals         LoanTotals
		current, prior Activity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalCustomers, err = s.repo.CountActiveCustomers(gctx)
		return wrap("count customers", err)
	})
	g.Go(func() (err error) {
		totals, err = s.repo.LoanTotals(gctx, today)
		return wrap("loan totals", err)
	})
	g.Go(func() (err error) {
		stats.TotalInterest, err = s.repo.TotalInterestCollected(gctx)
		return wrap("interest collected", err)
	})
	g.Go(func() (err error) {
		current, err = s.repo.PeriodActivity(gctx, thisMonth)
		return wrap("current month activity", err)
	})
	g.Go(func() (err error) {
		prior, err = s.repo.PeriodActivity(gctx, lastMonth)
		return wrap("previous month activity", err)
	})
	g.Go(func() (err error) {
		stats.MonthlyData, err = s.repo.MonthlyDisbursement(gctx, series)
		return wrap("monthly disbursement", err)
	})
	g.Go(func() (err error) {
		stats.RecentLoans, err = s.repo.RecentLoans(gctx, RecentActivityLimit)
		return wrap("recent loans", err)
	})
	g.Go(func() (err error) {
		stats.RecentPayments, err = s.repo.RecentPayments(gctx, RecentActivityLimit)
		return wrap("recent payments", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to build dashboard", slog.Any("error", err))
		return nil, err
	}

	stats.ActiveLoans = totals.ActiveCount
	stats.OverdueLoans = totals.OverdueCount
	stats.TotalDisbursed = totals.ActivePrincipal
	stats.CustomersChange = percentChangeInt(current.NewCustomers, prior.NewCustomers)
	stats.DisbursedChange = PercentChange(current.Disbursed, prior.Disbursed)
	stats.InterestChange = PercentChange(current.InterestCollected, prior.InterestCollected)
	stats.LoansChange = percentChangeInt(current.LoansCount, prior.LoansCount)
	return stats, nil
}

func (s *reportServiceImpl) Metrics(ctx context.Context, p Period) (*Metrics, error) {
	var cur, prev Activity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cur, err = s.repo.PeriodActivity(gctx, p)
		return wrap("period activity", err)
	})
	g.Go(func() (err error) {
		prev, err = s.repo.PeriodActivity(gctx, p.Previous())
		return wrap("previous period activity", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to compute metrics", slog.Any("error", err))
		return nil, err
	}

	return &Metrics{
		TotalLoansAmount: cur.Disbursed,
		TotalCustomers:   cur.Borrowers,
		TotalLoans:       cur.LoansCount,
		AverageInterest:  cur.AverageRate.Round(2).InexactFloat64(),
		InterestEarned:   cur.InterestCollected,
		MonthlyGrowth:    PercentChange(cur.Disbursed, prev.Disbursed),
		LoansGrowth:      percentChangeInt(cur.LoansCount, prev.LoansCount),
		CustomersGrowth:  percentChangeInt(cur.Borrowers, prev.Borrowers),
		InterestChange:   PercentChange(cur.InterestCollected, prev.InterestCollected),
	}, nil
}

func (s *reportServiceImpl) Charts(ctx context.Context, p Period) (*Charts, error) {
	var (
		monthly    []MonthlyAmount
		types      []TypeBreakdown
		financials []FinancialMonth
		opening    decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		monthly, err = s.repo.MonthlyDisbursement(gctx, p)
		return wrap("monthly disbursement", err)
	})
	g.Go(func() (err error) {
		types, err = s.repo.LoanTypeBreakdown(gctx, p)
		return wrap("loan types", err)
	})
	g.Go(func() (err error) {
		financials, err = s.repo.MonthlyFinancials(gctx, p)
		return wrap("monthly financials", err)
	})
	g.Go(func() (err error) {
		opening, err = s.repo.OutstandingBefore(gctx, p.From)
		return wrap("opening balance", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to build charts", slog.Any("error", err))
		return nil, err
	}

	c := &Charts{
		LoanTrend:         make([]TrendPoint, 0, len(monthly)),
		LoanTypes:         types,
		FinancialOverview: financials,
	}
	for _, m := range monthly {
		d := time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
		c.LoanTrend = append(c.LoanTrend, TrendPoint{Date: d.Format(trendDateLayout), Amount: m.Amount})
	}
	if c.LoanTypes == nil {
		c.LoanTypes = []TypeBreakdown{}
	}
	if c.FinancialOverview == nil {
		c.FinancialOverview = []FinancialMonth{}
	}
	running := opening
	for i := range c.FinancialOverview {
		fm := &c.FinancialOverview[i]
		running = running.Add(fm.Disbursed).Sub(fm.Collected)
		fm.Outstanding = running
	}
	return c, nil
}

func (s *reportServiceImpl) LoansSummary(ctx context.Context, p Period) ([]*loan.Loan, error) {
	loans, err := s.repo.LoansSummary(ctx, p)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load loans summary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load loans summary: %w", err)
	}
	if loans == nil {
		loans = []*loan.Loan{}
	}
	return loans, nil
}

func (s *reportServiceImpl) CustomerAnalysis(ctx context.Context) (*CustomerAnalysis, error) {
	today := loan.DateOf(s.now())
	window := Period{From: today.AddDate(0, 0, -newCustomerWindow), To: today.AddDate(0, 0, 1)}

	var (
		rows     []CustomerAnalysisRow
		activity Activity
		res      CustomerAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.repo.CustomerAggregates(gctx, today, CustomerAnalysisLimit)
		return wrap("customer aggregates", err)
	})
	g.Go(func() (err error) {
		activity, err = s.repo.PeriodActivity(gctx, window)
		return wrap("new customers", err)
	})
	g.Go(func() (err error) {
		res.Stats.ActiveCustomers, err = s.repo.CountActiveCustomers(gctx)
		return wrap("count customers", err)
	})
	g.Go(func() (err error) {
		res.Stats.AverageLoanSize, err = s.repo.AverageLoanSize(gctx)
		return wrap("average loan size", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to build customer analysis", slog.Any("error", err))
		return nil, err
	}

	for i := range rows {
		rows[i].CreditScore = RepaymentScore(rows[i].OverdueLoans)
	}
	if rows == nil {
		rows = []CustomerAnalysisRow{}
	}
	res.Customers = rows
	res.Stats.NewCustomers = activity.NewCustomers
	res.Stats.AverageLoanSize = res.Stats.AverageLoanSize.Round(2)
	return &res, nil
}

func (s *reportServiceImpl) InvalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, DashboardCacheKey); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate dashboard cache", slog.Any("error", err))
	}
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
