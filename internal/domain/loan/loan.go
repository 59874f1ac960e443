package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusClosed    Status = "closed"
)

var Statuses = []Status{StatusActive, StatusCompleted, StatusOverdue, StatusClosed}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Open loans block customer deactivation and accept payments.
func (s Status) Open() bool {
	return s == StatusActive || s == StatusOverdue
}

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

type Loan struct {
	ID                uuid.UUID       `json:"id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	LoanNumber        string          `json:"loan_number"`
	Principal         decimal.Decimal `json:"principal_amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	TenureMonths      int             `json:"tenure_months"`
	LoanType          string          `json:"loan_type"`
	DisbursedDate     time.Time       `json:"disbursed_date"`
	MaturityDate      time.Time       `json:"maturity_date"`
	Status            Status          `json:"status"`
	CollateralDetails map[string]any  `json:"collateral_details,omitempty"`
	DocumentURLs      []string        `json:"document_urls,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	CustomerName   string `json:"customer_name,omitempty"`
	CustomerMobile string `json:"customer_mobile,omitempty"`
	CustomerEmail  string `json:"-"`
}

type Terms struct {
	CustomerID        uuid.UUID
	Principal         decimal.Decimal
	InterestRate      decimal.Decimal
	TenureMonths      int
	LoanType          string
	DisbursedDate     time.Time
	CollateralDetails map[string]any
}

// NewLoan builds an active loan from already validated terms. The loan
// number is assigned by the repository on insert.
func NewLoan(t Terms) *Loan {
	now := time.Now().UTC()
	disbursed := DateOf(t.DisbursedDate)
	if t.DisbursedDate.IsZero() {
		disbursed = DateOf(now)
	}
	collateral := t.CollateralDetails
	if collateral == nil {
		collateral = map[string]any{}
	}
	return &Loan{
		ID:                uuid.New(),
		CustomerID:        t.CustomerID,
		Principal:         t.Principal.Round(2),
		InterestRate:      t.InterestRate.Round(2),
		TenureMonths:      t.TenureMonths,
		LoanType:          t.LoanType,
		DisbursedDate:     disbursed,
		MaturityDate:      AddMonths(disbursed, t.TenureMonths),
		Status:            StatusActive,
		CollateralDetails: collateral,
		DocumentURLs:      []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months, clamping the day to the end of the
// target month (Jan 31 + 1 month is Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// MonthsElapsed counts started months between from and to. A partial month
// counts as a whole one and the result is never below one.
func MonthsElapsed(from, to time.Time) int {
	from, to = DateOf(from), DateOf(to)
	if !to.After(from) {
		return 1
	}
	n := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if AddMonths(from, n).Before(to) {
		n++
	}
	for n > 1 && !AddMonths(from, n-1).Before(to) {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (l *Loan) MonthlyInterest() decimal.Decimal {
	return l.Principal.Mul(l.InterestRate).Div(hundred).Div(monthsInYear)
}

// AccruedInterest is simple interest on the original principal for every
// started month since disbursement. Until maturity it never exceeds the
// tenure; past maturity it keeps accruing.
func (l *Loan) AccruedInterest(at time.Time) decimal.Decimal {
	months := MonthsElapsed(l.DisbursedDate, at)
	if !l.PastMaturity(at) && months > l.TenureMonths {
		months = l.TenureMonths
	}
	return l.MonthlyInterest().Mul(decimal.NewFromInt(int64(months))).Round(2)
}

func (l *Loan) PastMaturity(at time.Time) bool {
	return DateOf(at).After(DateOf(l.MaturityDate))
}

type Totals struct {
	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
	PaymentCount  int
	LastPayment   *time.Time
}

type Balance struct {
	PrincipalPaid        decimal.Decimal `json:"principal_paid"`
	InterestPaid         decimal.Decimal `json:"interest_paid"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	AccruedInterest      decimal.Decimal `json:"accrued_interest"`
	InterestDue          decimal.Decimal `json:"interest_due"`
	TotalDue             decimal.Decimal `json:"total_due"`
}

func (l *Loan) Balance(paid Totals, at time.Time) Balance {
	outstanding := l.Principal.Sub(paid.PrincipalPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	accrued := l.AccruedInterest(at)
	interestDue := accrued.Sub(paid.InterestPaid)
	if interestDue.IsNegative() || !outstanding.IsPositive() {
		interestDue = decimal.Zero
	}
	return Balance{
		PrincipalPaid:        paid.PrincipalPaid,
		InterestPaid:         paid.InterestPaid,
		OutstandingPrincipal: outstanding,
		AccruedInterest:      accrued,
		InterestDue:          interestDue,
		TotalDue:             outstanding.Add(interestDue),
	}
}

func (l *Loan) Settled() bool {
	return l.Status == StatusCompleted || l.Status == StatusClosed
}

// SplitPayment allocates amount to the interest due first and the rest to
// principal. principal + interest always equals amount.
func (l *Loan) SplitPayment(amount decimal.Decimal, paid Totals, at time.Time) (principal, interest decimal.Decimal, err error) {
	if l.Settled() {
		return decimal.Zero, decimal.Zero, ErrSettled
	}
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrNonPositiveAmount
	}
	bal := l.Balance(paid, at)
	if amount.GreaterThan(bal.TotalDue) {
		return decimal.Zero, decimal.Zero, &ExceedsDueError{Amount: amount, TotalDue: bal.TotalDue}
	}
	interest = decimal.Min(amount, bal.InterestDue)
	principal = amount.Sub(interest)
	return principal, interest, nil
}

// DeriveStatus applies the status rules to the loan given its remaining
// principal: closed is terminal, repaid loans are completed and unsettled
// loans past maturity are overdue.
func (l *Loan) DeriveStatus(outstanding decimal.Decimal, at time.Time) Status {
	switch {
	case l.Status == StatusClosed:
		return StatusClosed
	case !outstanding.IsPositive():
		return StatusCompleted
	case l.PastMaturity(at):
		return StatusOverdue
	default:
		return StatusActive
	}
}
