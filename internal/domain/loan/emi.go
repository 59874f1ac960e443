package loan

import (
	"agv-finance/internal/pkg/apperrors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type EMIResult struct {
	EMI           decimal.Decimal `json:"emi"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

type Installment struct {
	Month     int             `json:"month"`
	DueDate   time.Time       `json:"due_date"`
	EMI       decimal.Decimal `json:"emi"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

func monthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.Div(monthsInYear).Div(hundred)
}

// CalculateEMI returns the equated monthly installment
// P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate. A zero rate
// spreads the principal evenly.
func CalculateEMI(principal, annualRate decimal.Decimal, tenureMonths int) (EMIResult, error) {
	if !principal.IsPositive() {
		return EMIResult{}, fmt.Errorf("%w: principal must be greater than zero", apperrors.ErrInvalidArgument)
	}
	if annualRate.IsNegative() {
		return EMIResult{}, fmt.Errorf("%w: interest rate cannot be negative", apperrors.ErrInvalidArgument)
	}
	if tenureMonths <= 0 {
		return EMIResult{}, fmt.Errorf("%w: tenure must be greater than zero", apperrors.ErrInvalidArgument)
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	var emi decimal.Decimal
	if annualRate.IsZero() {
		emi = principal.Div(n)
	} else {
		r := monthlyRate(annualRate)
		factor := decimal.NewFromInt(1).Add(r).Pow(n)
		emi = principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	}
	emi = emi.Round(2)
	total := emi.Mul(n).Round(2)
	return EMIResult{
		EMI:           emi,
		TotalPayment:  total,
		TotalInterest: total.Sub(principal).Round(2),
	}, nil
}

// GenerateSchedule builds a reducing-balance amortisation table. The last
// installment absorbs rounding so the balance ends at exactly zero.
func GenerateSchedule(principal, annualRate decimal.Decimal, tenureMonths int, start time.Time) ([]Installment, error) {
	res, err := CalculateEMI(principal, annualRate, tenureMonths)
	if err != nil {
		return nil, err
	}

	r := monthlyRate(annualRate)
	balance := principal.Round(2)
	schedule := make([]Installment, 0, tenureMonths)
	for month := 1; month <= tenureMonths; month++ {
		interest := balance.Mul(r).Round(2)
		emi := res.EMI
		principalPart := emi.Sub(interest)
		if month == tenureMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
			emi = principalPart.Add(interest)
		}
		balance = balance.Sub(principalPart)
		schedule = append(schedule, Installment{
			Month:     month,
			DueDate:   AddMonths(start, month),
			EMI:       emi,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})
		if balance.IsZero() && month < tenureMonths {
			break
		}
	}
	return schedule, nil
}

func (l *Loan) EMI() (EMIResult, error) {
	return CalculateEMI(l.Principal, l.InterestRate, l.TenureMonths)
}

func (l *Loan) Schedule() ([]Installment, error) {
	return GenerateSchedule(l.Principal, l.InterestRate, l.TenureMonths, l.DisbursedDate)
}
