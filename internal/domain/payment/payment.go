package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID              uuid.UUID       `json:"id"`
	LoanID          uuid.UUID       `json:"loan_id"`
	PaymentNumber   string          `json:"payment_number"`
	Amount          decimal.Decimal `json:"amount"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	PaymentMethod   string          `json:"payment_method"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	ReceiptNumber   string          `json:"receipt_number"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`

	LoanNumber   string `json:"loan_number,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}

type Allocation struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
}

// NewPayment builds an unsaved payment. Number and receipt number are
// assigned by the repository on insert.
func NewPayment(loanID uuid.UUID, amount decimal.Decimal, split Allocation, in RecordInput) *Payment {
	return &Payment{
		ID:              uuid.New(),
		LoanID:          loanID,
		Amount:          amount,
		PrincipalAmount: split.Principal,
		InterestAmount:  split.Interest,
		PaymentDate:     in.PaymentDate,
		PaymentMethod:   in.Method,
		TransactionID:   in.TransactionID,
		Notes:           in.Notes,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       time.Now().UTC(),
	}
}
