package dto

import (
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/pkg/pagination"
	"time"

	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	CustomerID        string          `json:"customer_id" validate:"required,uuid"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	TenureMonths      int             `json:"tenure_months" validate:"required,min=1,max=360"`
	LoanType          string          `json:"loan_type" validate:"required,loantype"`
	DisbursedDate     string          `json:"disbursed_date"`
	CollateralDetails map[string]any  `json:"collateral_details"`
}

type LoanResponse struct {
	ID                string          `json:"id"`
	LoanNumber        string          `json:"loan_number"`
	CustomerID        string          `json:"customer_id"`
	CustomerName      string          `json:"customer_name,omitempty"`
	CustomerMobile    string          `json:"customer_mobile,omitempty"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	TenureMonths      int             `json:"tenure_months"`
	LoanType          string          `json:"loan_type"`
	DisbursedDate     string          `json:"disbursed_date"`
	MaturityDate      string          `json:"maturity_date"`
	Status            string          `json:"status"`
	CollateralDetails map[string]any  `json:"collateral_details,omitempty"`
	DocumentURLs      []string        `json:"document_urls,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func NewLoanResponse(l *loan.Loan) LoanResponse {
	if l == nil {
		return LoanResponse{}
	}
	return LoanResponse{
		ID:                l.ID.String(),
		LoanNumber:        l.LoanNumber,
		CustomerID:        l.CustomerID.String(),
		CustomerName:      l.CustomerName,
		CustomerMobile:    l.CustomerMobile,
		PrincipalAmount:   l.Principal,
		InterestRate:      l.InterestRate,
		TenureMonths:      l.TenureMonths,
		LoanType:          l.LoanType,
		DisbursedDate:     l.DisbursedDate.Format(time.DateOnly),
		MaturityDate:      l.MaturityDate.Format(time.DateOnly),
		Status:            string(l.Status),
		CollateralDetails: l.CollateralDetails,
		DocumentURLs:      l.DocumentURLs,
		CreatedAt:         l.CreatedAt,
	}
}

func NewLoanResponses(loans []*loan.Loan) []LoanResponse {
	out := make([]LoanResponse, len(loans))
	for i, l := range loans {
		out[i] = NewLoanResponse(l)
	}
	return out
}

type LoanListResponse struct {
	Loans      []LoanResponse  `json:"loans"`
	Pagination pagination.Meta `json:"pagination"`
}

func NewLoanListResponse(res *loan.ListResult) LoanListResponse {
	return LoanListResponse{
		Loans:      NewLoanResponses(res.Loans),
		Pagination: pagination.NewMeta(pagination.Params{Page: res.Page, PerPage: res.PerPage}, res.Total),
	}
}

type LoanSearchResponse struct {
	Loans []LoanResponse `json:"loans"`
}

type LoanSummaryResponse struct {
	Loan                 LoanResponse    `json:"loan"`
	EMI                  decimal.Decimal `json:"emi"`
	PrincipalPaid        decimal.Decimal `json:"principal_paid"`
	InterestPaid         decimal.Decimal `json:"interest_paid"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	AccruedInterest      decimal.Decimal `json:"accrued_interest"`
	InterestDue          decimal.Decimal `json:"interest_due"`
	TotalDue             decimal.Decimal `json:"total_due"`
	MonthsElapsed        int             `json:"months_elapsed"`
	PaymentCount         int             `json:"payment_count"`
	Status               string          `json:"status"`
}

func NewLoanSummaryResponse(s *loan.Summary) LoanSummaryResponse {
	return LoanSummaryResponse{
		Loan:                 NewLoanResponse(s.Loan),
		EMI:                  s.EMI,
		PrincipalPaid:        s.PrincipalPaid,
		InterestPaid:         s.InterestPaid,
		OutstandingPrincipal: s.OutstandingPrincipal,
		AccruedInterest:      s.AccruedInterest,
		InterestDue:          s.InterestDue,
		TotalDue:             s.TotalDue,
		MonthsElapsed:        s.MonthsElapsed,
		PaymentCount:         s.PaymentCount,
		Status:               string(s.Status),
	}
}

type InstallmentResponse struct {
	Month     int             `json:"month"`
	DueDate   string          `json:"due_date"`
	EMI       decimal.Decimal `json:"emi"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

type ScheduleResponse struct {
	LoanID   string                `json:"loan_id,omitempty"`
	Schedule []InstallmentResponse `json:"schedule"`
}

func NewInstallmentResponses(items []loan.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, len(items))
	for i, it := range items {
		out[i] = InstallmentResponse{
			Month:     it.Month,
			DueDate:   it.DueDate.Format(time.DateOnly),
			EMI:       it.EMI,
			Principal: it.Principal,
			Interest:  it.Interest,
			Balance:   it.Balance,
		}
	}
	return out
}

type EMIResponse struct {
	Principal     decimal.Decimal       `json:"principal"`
	Rate          decimal.Decimal       `json:"rate"`
	Tenure        int                   `json:"tenure"`
	EMI           decimal.Decimal       `json:"emi"`
	TotalPayment  decimal.Decimal       `json:"total_payment"`
	TotalInterest decimal.Decimal       `json:"total_interest"`
	Schedule      []InstallmentResponse `json:"schedule,omitempty"`
}
