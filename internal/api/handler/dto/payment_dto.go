package dto

import (
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/domain/payment"
	"agv-finance/internal/pkg/pagination"
	"time"

	"github.com/shopspring/decimal"
)

type RecordPaymentRequest struct {
	LoanID        string          `json:"loan_id" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,paymentmethod"`
	TransactionID string          `json:"transaction_id" validate:"max=100"`
	Notes         string          `json:"notes" validate:"max=1000"`
}

type PaymentResponse struct {
	ID              string           `json:"id"`
	PaymentNumber   string           `json:"payment_number"`
	ReceiptNumber   string           `json:"receipt_number"`
	LoanID          string           `json:"loan_id"`
	LoanNumber      string           `json:"loan_number,omitempty"`
	CustomerName    string           `json:"customer_name,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	PrincipalAmount decimal.Decimal  `json:"principal_amount"`
	InterestAmount  decimal.Decimal  `json:"interest_amount"`
	PaymentDate     time.Time        `json:"payment_date"`
	PaymentMethod   string           `json:"payment_method"`
	TransactionID   string           `json:"transaction_id,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedBy       string           `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	Loan            *PaymentLoanInfo `json:"loan,omitempty"`
}

// PaymentLoanInfo is the loan context shown next to a single payment.
type PaymentLoanInfo struct {
	LoanNumber      string          `json:"loan_number"`
	CustomerName    string          `json:"customer_name"`
	CustomerMobile  string          `json:"customer_mobile"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	Status          string          `json:"status"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	if p == nil {
		return PaymentResponse{}
	}
	return PaymentResponse{
		ID:              p.ID.String(),
		PaymentNumber:   p.PaymentNumber,
		ReceiptNumber:   p.ReceiptNumber,
		LoanID:          p.LoanID.String(),
		LoanNumber:      p.LoanNumber,
		CustomerName:    p.CustomerName,
		Amount:          p.Amount,
		PrincipalAmount: p.PrincipalAmount,
		InterestAmount:  p.InterestAmount,
		PaymentDate:     p.PaymentDate,
		PaymentMethod:   p.PaymentMethod,
		TransactionID:   p.TransactionID,
		Notes:           p.Notes,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
	}
}

func (r PaymentResponse) WithLoan(l *loan.Loan) PaymentResponse {
	if l != nil {
		r.Loan = &PaymentLoanInfo{
			LoanNumber:      l.LoanNumber,
			CustomerName:    l.CustomerName,
			CustomerMobile:  l.CustomerMobile,
			PrincipalAmount: l.Principal,
			Status:          string(l.Status),
		}
	}
	return r
}

type PaymentListResponse struct {
	Payments   []PaymentResponse `json:"payments"`
	Pagination pagination.Meta   `json:"pagination"`
}

func NewPaymentListResponse(res *payment.ListResult) PaymentListResponse {
	out := PaymentListResponse{
		Payments:   make([]PaymentResponse, len(res.Payments)),
		Pagination: pagination.NewMeta(pagination.Params{Page: res.Page, PerPage: res.PerPage}, res.Total),
	}
	for i, p := range res.Payments {
		out.Payments[i] = NewPaymentResponse(p)
	}
	return out
}
