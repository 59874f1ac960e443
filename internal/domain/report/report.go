package report

import (
	"agv-finance/internal/domain/loan"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RecentActivityLimit   = 10
	CustomerAnalysisLimit = 100
	defaultPeriodMonths   = 6
	scorePerfect          = 1000
	scorePenaltyOverdue   = 250
)

// Period is a half-open date range [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// NewPeriod builds a period covering the calendar days from..to inclusive.
// A zero to means today and a zero from means six months before to.
func NewPeriod(from, to, now time.Time) Period {
	if to.IsZero() {
		to = now
	}
	to = loan.DateOf(to)
	if from.IsZero() {
		from = loan.AddMonths(to, -defaultPeriodMonths)
	}
	from = loan.DateOf(from)
	if from.After(to) {
		from, to = to, from
	}
	return Period{From: from, To: to.AddDate(0, 0, 1)}
}

// Previous returns the period of equal length that ends where p starts.
func (p Period) Previous() Period {
	return Period{From: p.From.Add(-p.To.Sub(p.From)), To: p.From}
}

// MonthPeriod covers the calendar month containing t.
func MonthPeriod(t time.Time) Period {
	y, m, _ := t.Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: from.AddDate(0, 1, 0)}
}

type LoanTotals struct {
	ActiveCount     int
	OverdueCount    int
	ActivePrincipal decimal.Decimal
}

type Activity struct {
	NewCustomers       int
	Borrowers          int
	LoansCount         int
	Disbursed          decimal.Decimal
	PrincipalCollected decimal.Decimal
	InterestCollected  decimal.Decimal
	AverageRate        decimal.Decimal
}

type ActivityItem struct {
	ID        uuid.UUID       `json:"id"`
	Reference string          `json:"reference"`
	Customer  string          `json:"customer"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type,omitempty"`
	Date      time.Time       `json:"date"`
}

type MonthlyAmount struct {
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type DashboardStats struct {
	TotalCustomers  int             `json:"total_customers"`
	TotalDisbursed  decimal.Decimal `json:"total_disbursed"`
	TotalInterest   decimal.Decimal `json:"total_interest"`
	ActiveLoans     int             `json:"active_loans"`
	OverdueLoans    int             `json:"overdue_loans"`
	CustomersChange float64         `json:"customers_change"`
	DisbursedChange float64         `json:"disbursed_change"`
	InterestChange  float64         `json:"interest_change"`
	LoansChange     float64         `json:"loans_change"`
	MonthlyData     []MonthlyAmount `json:"monthlyData"`
	RecentLoans     []ActivityItem  `json:"recentLoans"`
	RecentPayments  []ActivityItem  `json:"recentPayments"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

type Metrics struct {
	TotalLoansAmount decimal.Decimal `json:"totalLoansAmount"`
	TotalCustomers   int             `json:"totalCustomers"`
	TotalLoans       int             `json:"totalLoans"`
	AverageInterest  float64         `json:"averageInterest"`
	InterestEarned   decimal.Decimal `json:"interestEarned"`
	MonthlyGrowth    float64         `json:"monthlyGrowth"`
	LoansGrowth      float64         `json:"loansGrowth"`
	CustomersGrowth  float64         `json:"customersGrowth"`
	InterestChange   float64         `json:"interestChange"`
}

type TrendPoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type TypeBreakdown struct {
	Type   string          `json:"type"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type FinancialMonth struct {
	Month       string          `json:"month"`
	Disbursed   decimal.Decimal `json:"disbursed"`
	Collected   decimal.Decimal `json:"collected"`
	Interest    decimal.Decimal `json:"interest"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type Charts struct {
	LoanTrend         []TrendPoint     `json:"loanTrend"`
	LoanTypes         []TypeBreakdown  `json:"loanTypes"`
	FinancialOverview []FinancialMonth `json:"financialOverview"`
}

type CustomerAnalysisRow struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Mobile       string          `json:"mobile"`
	Status       string          `json:"status"`
	TotalLoans   int             `json:"total_loans"`
	OverdueLoans int             `json:"overdue_loans"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	LastLoanDate *time.Time      `json:"last_loan_date"`
	CreditScore  int             `json:"credit_score"`
}

type CustomerStats struct {
	NewCustomers    int             `json:"newCustomers"`
	ActiveCustomers int             `json:"activeCustomers"`
	AverageLoanSize decimal.Decimal `json:"averageLoanSize"`
}

type CustomerAnalysis struct {
	Customers []CustomerAnalysisRow `json:"customers"`
	Stats     CustomerStats         `json:"stats"`
}

// RepaymentScore starts at 1000 and loses 250 per overdue loan, never below zero.
func RepaymentScore(overdueLoans int) int {
	score := scorePerfect - scorePenaltyOverdue*overdueLoans
	if score < 0 {
		return 0
	}
	return score
}

// PercentChange is the growth from prev to cur in percent, rounded to one
// decimal. Growth from zero counts as 100%.
func PercentChange(cur, prev decimal.Decimal) float64 {
	if prev.IsZero() {
		if cur.IsPositive() {
			return 100
		}
		return 0
	}
	f := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return math.Round(f*10) / 10
}

func percentChangeInt(cur, prev int) float64 {
	return PercentChange(decimal.NewFromInt(int64(cur)), decimal.NewFromInt(int64(prev)))
}
