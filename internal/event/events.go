package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoutingKeyCustomerCreated   = "customer.created"
	RoutingKeyCustomerUpdated   = "customer.updated"
	RoutingKeyLoanCreated       = "loan.created"
	RoutingKeyLoanStatusChanged = "loan.status.changed"
	RoutingKeyPaymentRecorded   = "payment.recorded"
)

type CustomerEventPayload struct {
	CustomerID uuid.UUID `json:"customerId"`
	Name       string    `json:"name"`
	Mobile     string    `json:"mobile"`
	Email      string    `json:"email,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

// Money fields travel as fixed two-decimal strings.
type LoanCreatedEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	LoanID        uuid.UUID `json:"loanId"`
	LoanNumber    string    `json:"loanNumber"`
	CustomerID    uuid.UUID `json:"customerId"`
	Principal     string    `json:"principal"`
	InterestRate  string    `json:"interestRate"`
	TenureMonths  int       `json:"tenureMonths"`
	LoanType      string    `json:"loanType"`
	DisbursedDate time.Time `json:"disbursedDate"`
	MaturityDate  time.Time `json:"maturityDate"`
}

type LoanStatusChangedEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	LoanID     uuid.UUID `json:"loanId"`
	LoanNumber string    `json:"loanNumber"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
}

type PaymentRecordedEvent struct {
	Timestamp       time.Time `json:"timestamp"`
	PaymentID       uuid.UUID `json:"paymentId"`
	PaymentNumber   string    `json:"paymentNumber"`
	LoanID          uuid.UUID `json:"loanId"`
	LoanNumber      string    `json:"loanNumber"`
	Amount          string    `json:"amount"`
	PrincipalAmount string    `json:"principalAmount"`
	InterestAmount  string    `json:"interestAmount"`
	PaymentMethod   string    `json:"paymentMethod"`
	PaymentDate     time.Time `json:"paymentDate"`
	LoanStatus      string    `json:"loanStatus"`
}
